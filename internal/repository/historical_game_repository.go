package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/blazesportsintel/forecast/internal/database"
	"github.com/blazesportsintel/forecast/internal/models"
)

// PostgresHistoricalGameRepository implements HistoricalGameRepository for PostgreSQL
type PostgresHistoricalGameRepository struct {
	db *database.DB
}

// NewPostgresHistoricalGameRepository creates a new historical game repository
func NewPostgresHistoricalGameRepository(db *database.DB) HistoricalGameRepository {
	return &PostgresHistoricalGameRepository{db: db}
}

// GetTrainingRows retrieves labeled historical rows for a sport, optionally
// bounded by event date. Rows come back oldest first so chronological
// cross-validation folds stay contiguous.
func (r *PostgresHistoricalGameRepository) GetTrainingRows(ctx context.Context, sport string, start, end *time.Time) ([]*models.HistoricalRow, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, sport, player_name, position, competition_level, birth_date, event_date, stats, draft_round
		FROM historical_games
		WHERE sport = $1 AND draft_round IS NOT NULL
	`)

	args := []interface{}{sport}
	if start != nil {
		args = append(args, *start)
		fmt.Fprintf(&sb, " AND event_date >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		fmt.Fprintf(&sb, " AND event_date < $%d", len(args))
	}
	sb.WriteString(" ORDER BY event_date ASC")

	rows, err := r.db.GetPool().Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query training rows: %w", err)
	}
	defer rows.Close()

	var result []*models.HistoricalRow
	for rows.Next() {
		row := &models.HistoricalRow{}
		var statsJSON []byte
		err := rows.Scan(
			&row.ID, &row.Sport, &row.PlayerName, &row.Position, &row.CompetitionLevel,
			&row.BirthDate, &row.EventDate, &statsJSON, &row.DraftRound,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training row: %w", err)
		}
		if len(statsJSON) > 0 {
			if err := json.Unmarshal(statsJSON, &row.Stats); err != nil {
				return nil, fmt.Errorf("failed to decode stats: %w", err)
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// CountBySport returns the number of labeled rows available for a sport
func (r *PostgresHistoricalGameRepository) CountBySport(ctx context.Context, sport string) (int, error) {
	query := `SELECT COUNT(*) FROM historical_games WHERE sport = $1 AND draft_round IS NOT NULL`

	var count int
	if err := r.db.GetPool().QueryRow(ctx, query, sport).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count training rows: %w", err)
	}
	return count, nil
}
