package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danielBingham/communities-sub006/internal/domain"
	"github.com/danielBingham/communities-sub006/internal/port"
)

// RecipientRepository resolves user ids to recipients with their channel
// preferences and device tokens. Preferences live on the users table as a
// text[] of enabled channel names; device tokens in user_devices.
type RecipientRepository struct {
	DB *pgxpool.Pool
}

func NewRecipientRepository(pool *pgxpool.Pool) *RecipientRepository {
	return &RecipientRepository{DB: pool}
}

func (r *RecipientRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Recipient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.DB.Query(ctx,
		`SELECT u.id, u.name, u.email, u.notification_channels,
		        COALESCE(array_agg(d.token) FILTER (WHERE d.token IS NOT NULL), '{}')
		 FROM users u
		 LEFT JOIN user_devices d ON d.user_id = u.id
		 WHERE u.id = ANY($1)
		 GROUP BY u.id, u.name, u.email, u.notification_channels
		 ORDER BY u.id`,
		ids)
	if err != nil {
		return nil, fmt.Errorf("find recipients: %w", err)
	}
	defer rows.Close()

	var recipients []domain.Recipient
	for rows.Next() {
		var rcpt domain.Recipient
		if err := rows.Scan(&rcpt.ID, &rcpt.Name, &rcpt.Email, &rcpt.Channels, &rcpt.DeviceTokens); err != nil {
			return nil, err
		}
		recipients = append(recipients, rcpt)
	}
	return recipients, rows.Err()
}

var _ port.RecipientRepository = (*RecipientRepository)(nil)
