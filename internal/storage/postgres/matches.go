package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/entities/internal/game/combat"
	"github.com/cory-johannsen/entities/internal/game/match"
	"github.com/cory-johannsen/entities/internal/game/ruleset"
)

var (
	// ErrNoMatches is returned by Recent when nothing has been recorded yet.
	ErrNoMatches = errors.New("no matches recorded")
	// ErrMatchNotFinished is returned by Record for a result whose outcome is not terminal.
	ErrMatchNotFinished = errors.New("match has not finished")
	// ErrDuplicateMatch is returned by Record when the match ID is already stored.
	ErrDuplicateMatch = errors.New("match already recorded")
)

// MatchRepository stores finished matches. It implements match.History.
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a MatchRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	if db == nil {
		panic("postgres.NewMatchRepository: db must not be nil")
	}
	return &MatchRepository{db: db}
}

// Record inserts res.
//
// Precondition: res.Outcome must be terminal and res.ID non-nil.
// Postcondition: The match is stored, or ErrMatchNotFinished / ErrDuplicateMatch
// or a wrapped database error is returned.
func (r *MatchRepository) Record(ctx context.Context, res match.Result) error {
	if !res.Outcome.Terminal() {
		return fmt.Errorf("recording %s in state %s: %w", res.ID, res.Outcome, ErrMatchNotFinished)
	}
	if res.ID == uuid.Nil {
		return fmt.Errorf("recording match: nil id")
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO matches
			(id, outcome, mode, scale, rounds, player_health, enemy_health,
			 final_narration, started_at, ended_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		res.ID.String(), res.Outcome.String(), int(res.Mode), res.Scale, res.Rounds,
		res.PlayerHealth, res.EnemyHealth, narrationLines(res.Narration),
		res.StartedAt.UTC(), res.EndedAt.UTC(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateMatch
		}
		return fmt.Errorf("inserting match: %w", err)
	}
	return nil
}

// Recent returns up to n matches, most recently finished first.
//
// Precondition: n must be > 0.
// Postcondition: Returns at least one match or ErrNoMatches.
func (r *MatchRepository) Recent(ctx context.Context, n int) ([]match.Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("recent matches: limit %d must be positive", n)
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, outcome, mode, scale, rounds, player_health, enemy_health,
		       final_narration, started_at, ended_at
		FROM matches ORDER BY ended_at DESC, id LIMIT $1`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	out := make([]match.Result, 0, n)
	for rows.Next() {
		var row matchRow
		if err := rows.Scan(
			&row.id, &row.outcome, &row.mode, &row.scale, &row.rounds,
			&row.playerHealth, &row.enemyHealth, &row.narration,
			&row.startedAt, &row.endedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		res, err := row.result()
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoMatches
	}
	return out, nil
}

// Tally counts stored outcomes.
func (r *MatchRepository) Tally(ctx context.Context) (match.Tally, error) {
	var t match.Tally
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE outcome = 'victory'),
			COUNT(*) FILTER (WHERE outcome = 'defeat'),
			COUNT(*) FILTER (WHERE outcome = 'aborted')
		FROM matches`,
	).Scan(&t.Wins, &t.Losses, &t.Aborts)
	if err != nil {
		return match.Tally{}, fmt.Errorf("counting matches: %w", err)
	}
	return t, nil
}

type matchRow struct {
	id           string
	outcome      string
	mode         int16
	scale        int16
	rounds       int32
	playerHealth int32
	enemyHealth  int32
	narration    []string
	startedAt    time.Time
	endedAt      time.Time
}

func (row matchRow) result() (match.Result, error) {
	id, err := uuid.Parse(row.id)
	if err != nil {
		return match.Result{}, fmt.Errorf("parsing match id %q: %w", row.id, err)
	}
	outcome, ok := match.ParseState(row.outcome)
	if !ok || !outcome.Terminal() {
		return match.Result{}, fmt.Errorf("match %s: unknown outcome %q", id, row.outcome)
	}
	mode, err := ruleset.ParseMode(uint(row.mode))
	if err != nil {
		return match.Result{}, fmt.Errorf("match %s: %w", id, err)
	}
	res := match.Result{
		ID:           id,
		Outcome:      outcome,
		Mode:         mode,
		Scale:        int(row.scale),
		Rounds:       int(row.rounds),
		PlayerHealth: int(row.playerHealth),
		EnemyHealth:  int(row.enemyHealth),
		StartedAt:    row.startedAt,
		EndedAt:      row.endedAt,
	}
	for _, line := range row.narration {
		res.Narration = append(res.Narration, combat.Event{Kind: combat.EventInfo, Text: line})
	}
	return res, nil
}

// narrationLines flattens events to their text; side and kind are not stored.
func narrationLines(events []combat.Event) []string {
	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = e.Text
	}
	return lines
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

var _ match.History = (*MatchRepository)(nil)
