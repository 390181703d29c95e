package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"ms-seating/internal/database"
	"ms-seating/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ListMembers → every member, by name
func (d *DB) ListMembers(ctx context.Context) ([]models.Member, error) {
	members := []models.Member{}
	err := d.Bun.NewSelect().
		Model(&members).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// GetMember → fetch one member by ID
func (d *DB) GetMember(ctx context.Context, id string) (*models.Member, error) {
	var member models.Member
	err := d.Bun.NewSelect().
		Model(&member).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &member, nil
}

// CreateMember → insert new member
func (d *DB) CreateMember(ctx context.Context, member models.Member) error {
	_, err := d.Bun.NewInsert().Model(&member).Exec(ctx)
	return err
}

// UpdateMember → overwrite contact fields and refresh the member name
// denormalised on their bookings, in one transaction
func (d *DB) UpdateMember(ctx context.Context, member models.Member) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(&member).
			Column("name", "email", "phone", "default_price").
			Where("id = ?", member.ID).
			Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("member %s: %w", member.ID, database.ErrNotFound)
		}

		_, err = tx.NewUpdate().
			Model((*models.Booking)(nil)).
			Set("member_name = ?", member.Name).
			Where("member_id = ?", member.ID).
			Exec(ctx)
		return err
	})
}

// DeleteMember → remove a member and all of their bookings atomically.
// Returns how many bookings went with them.
func (d *DB) DeleteMember(ctx context.Context, id string) (int, error) {
	var removed int
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*models.Booking)(nil)).
			Where("member_id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removed = int(n)

		res, err = tx.NewDelete().
			Model((*models.Member)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err = res.RowsAffected(); err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("member %s: %w", id, database.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
