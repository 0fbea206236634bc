package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SplitLines turns raw poem text into trimmed, non-empty lines.
func SplitLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	raw := strings.Split(normalized, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// CreateFragment inserts a fragment and its lines numbered 1..N in one transaction.
func (s *Store) CreateFragment(ctx context.Context, title string, lines []string) (*Fragment, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("fragment title is required")
	}
	var id int64
	err := s.WithinTx(ctx, func(r *Repo) error {
		timestamp := nowString()
		res, err := r.execWithRetry(ctx,
			`INSERT INTO fragments (title, created_at, updated_at) VALUES (?, ?, ?)`,
			title, timestamp, timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert fragment: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		number := 0
		for _, text := range lines {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			number++
			if err := r.execWithoutResultRetry(ctx,
				`INSERT INTO lines (fragment_id, line_number, text) VALUES (?, ?, ?)`,
				id, number, text,
			); err != nil {
				return fmt.Errorf("insert line %d: %w", number, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Fragment(ctx, id)
}

// Fragment fetches a fragment by identifier. It returns nil, nil when absent.
func (r *Repo) Fragment(ctx context.Context, id int64) (*Fragment, error) {
	row := r.q.QueryRowContext(ctx, `SELECT id, title, created_at, updated_at FROM fragments WHERE id = ?`, id)
	fragment, err := scanFragment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fragment: %w", err)
	}
	return fragment, nil
}

// ListFragments returns all fragments ordered by identifier.
func (r *Repo) ListFragments(ctx context.Context) ([]Fragment, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, title, created_at, updated_at FROM fragments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list fragments: %w", err)
	}
	defer rows.Close()

	var fragments []Fragment
	for rows.Next() {
		fragment, err := scanFragment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fragment: %w", err)
		}
		fragments = append(fragments, *fragment)
	}
	return fragments, rows.Err()
}

// Lines returns a fragment's lines ordered by line number.
func (r *Repo) Lines(ctx context.Context, fragmentID int64) ([]Line, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, fragment_id, line_number, text FROM lines WHERE fragment_id = ? ORDER BY line_number`,
		fragmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.FragmentID, &line.Number, &line.Text); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// LineCount returns the number of lines in a fragment.
func (r *Repo) LineCount(ctx context.Context, fragmentID int64) (int, error) {
	var count int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM lines WHERE fragment_id = ?`, fragmentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count lines: %w", err)
	}
	return count, nil
}
