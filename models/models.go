package models

// User is an account row. Hash holds the stored credential string; its
// format depends on the configured credential scheme.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Hash     string `json:"-"`
}

// Frequency codes for recurring tasks.
const (
	FreqNone    = 0
	FreqDaily   = 1
	FreqWeekly  = 2
	FreqMonthly = 3
	FreqYearly  = 4
)

type Task struct {
	ID       int    `json:"id"`
	UserID   int    `json:"user_id"`
	Title    string `json:"title"`
	Date     string `json:"date"` // ISO date text, YYYY-MM-DD
	Freq     int    `json:"freq"`
	Complete bool   `json:"complete"`
}

// TaskDue is a pending task annotated with its distance from today, in
// days. Fractional values are expected: the distance is measured in
// julian days against the current instant, not against midnight.
type TaskDue struct {
	Task
	DaysToComplete float64
}

// TaskBuckets groups a user's pending tasks for display. The ranges are
// keyed on DaysToComplete: Overdue <0, Today [0,1), Tomorrow [1,2),
// ThisWeek [2,6), Later >=7. Values in [6,7) land in no bucket; the gap
// is longstanding observable behavior and is kept as-is.
type TaskBuckets struct {
	Overdue  []TaskDue
	Today    []TaskDue
	Tomorrow []TaskDue
	ThisWeek []TaskDue
	Later    []TaskDue
}
