package repository

// Collection keys in the record store. The application prefix keeps the
// files recognisable when the data directory is shared.
const (
	collectionUsers         = "studytrack_users"
	collectionAssignments   = "studytrack_assignments"
	collectionGrades        = "studytrack_grades"
	collectionClasses       = "studytrack_classes"
	collectionNotifications = "studytrack_notifications"
	collectionSessions      = "studytrack_sessions"
)
