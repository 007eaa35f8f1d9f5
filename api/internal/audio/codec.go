// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.
package internal_audio

import (
	"fmt"

	"github.com/zaf/g711"
)

// DecodeToLinear16 converts an inbound frame to 16-bit little-endian PCM.
// Linear16 input passes through untouched.
func DecodeToLinear16(data []byte, encoding Encoding) ([]byte, error) {
	switch encoding {
	case Linear16, "":
		return data, nil
	case MuLaw8:
		return g711.DecodeUlaw(data), nil
	default:
		return nil, fmt.Errorf("unsupported audio encoding: %s", encoding)
	}
}
