package store

import (
	"database/sql"
	"errors"

	"taskhive/models"
)

// CreateTask inserts a new incomplete task for the given owner. Title
// and date are stored as submitted; the storage layer is the only
// validation there is.
func (s *Store) CreateTask(userID int, title, date string, freq int) error {
	_, err := s.db.Exec("INSERT INTO tasks (user_id, title, date, freq) VALUES (?, ?, ?, ?)",
		userID, title, date, freq)
	return err
}

// TaskFor loads one task scoped to its owner. A wrong id and a wrong
// owner are indistinguishable: both return ErrTaskNotFound.
func (s *Store) TaskFor(userID, taskID int) (*models.Task, error) {
	var t models.Task
	err := s.db.QueryRow("SELECT id, user_id, title, date, freq, complete FROM tasks WHERE user_id = ? AND id = ?",
		userID, taskID).Scan(&t.ID, &t.UserID, &t.Title, &t.Date, &t.Freq, &t.Complete)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask rewrites title, date and freq in place, scoped to the owner.
func (s *Store) UpdateTask(userID, taskID int, title, date string, freq int) error {
	_, err := s.db.Exec("UPDATE tasks SET title = ?, date = ?, freq = ? WHERE user_id = ? AND id = ?",
		title, date, freq, userID, taskID)
	return err
}

// DeleteTask removes one task, scoped to the owner.
func (s *Store) DeleteTask(userID, taskID int) error {
	_, err := s.db.Exec("DELETE FROM tasks WHERE user_id = ? AND id = ?", userID, taskID)
	return err
}

// ToggleComplete flips the complete flag of a task by bare id. The
// statement is deliberately not scoped to an owner: the toggle form on
// the list view has always worked this way, and changing it here would
// silently change semantics. See DESIGN.md.
func (s *Store) ToggleComplete(taskID int) error {
	_, err := s.db.Exec("UPDATE tasks SET complete = (CASE WHEN complete = 0 THEN 1 ELSE 0 END) WHERE id = ?", taskID)
	return err
}

// SpawnSuccessor creates the next occurrence of a recurring task that
// has just been completed. The date arithmetic runs inside sqlite so
// month and year overflow normalize exactly as they always have
// ('2024-01-31' + 1 month is '2024-03-02'). If the task is
// non-recurring, not complete, or the id matches nothing, this is a
// silent no-op: a toggle back to incomplete must not spawn anything.
func (s *Store) SpawnSuccessor(taskID int) error {
	var (
		userID   int
		title    string
		freq     int
		nextDate string
	)
	err := s.db.QueryRow(`SELECT user_id, title, freq,
			CASE WHEN freq = 1 THEN date(date, '+1 days')
			     WHEN freq = 2 THEN date(date, '+7 days')
			     WHEN freq = 3 THEN date(date, '+1 months')
			     WHEN freq = 4 THEN date(date, '+1 years')
			END AS next_date
		FROM tasks
		WHERE id = ? AND freq > 0 AND complete = 1`, taskID).Scan(&userID, &title, &freq, &nextDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.db.Exec("INSERT INTO tasks (user_id, title, date, freq) VALUES (?, ?, ?, ?)",
		userID, title, nextDate, freq)
	return err
}

// ResetComplete clears the complete flag on every task the user owns.
func (s *Store) ResetComplete(userID int) error {
	_, err := s.db.Exec("UPDATE tasks SET complete = 0 WHERE user_id = ?", userID)
	return err
}

// PendingTasks returns the user's incomplete tasks ordered by due date,
// each annotated with its julian-day distance from now.
func (s *Store) PendingTasks(userID int) ([]models.TaskDue, error) {
	rows, err := s.db.Query(`SELECT id, user_id, title, date, freq, complete,
			(julianday(date) - julianday('now') + 1) AS days_to_complete
		FROM tasks
		WHERE user_id = ? AND complete = 0
		ORDER BY date ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.TaskDue
	for rows.Next() {
		var t models.TaskDue
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Date, &t.Freq, &t.Complete, &t.DaysToComplete); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Buckets groups pending tasks into the five display ranges. The input
// order (date ascending) is preserved within each bucket.
func Buckets(tasks []models.TaskDue) models.TaskBuckets {
	var b models.TaskBuckets
	for _, t := range tasks {
		d := t.DaysToComplete
		switch {
		case d < 0:
			b.Overdue = append(b.Overdue, t)
		case d < 1:
			b.Today = append(b.Today, t)
		case d < 2:
			b.Tomorrow = append(b.Tomorrow, t)
		case d < 6:
			b.ThisWeek = append(b.ThisWeek, t)
		case d >= 7:
			b.Later = append(b.Later, t)
		}
	}
	return b
}
