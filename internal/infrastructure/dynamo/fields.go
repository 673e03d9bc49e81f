package dynamo

// GSI hash attribute names for account lookups.
const (
	fieldEmail     = "email"
	fieldSubjectID = "subject_id"
)
