package type_enums

// RecordState is the lifecycle state of a persisted row. Deleted rows are
// kept out of listings but remain in place until the retention sweeper
// purges them.
type RecordState string

const (
	ACTIVE  RecordState = "ACTIVE"
	DELETED RecordState = "DELETED"
)

func (r RecordState) String() string {
	return string(r)
}
