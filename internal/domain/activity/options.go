package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	ChangeSet    string
	TaskID       *int
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
