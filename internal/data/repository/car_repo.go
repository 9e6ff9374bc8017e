package repository

import (
	"context"
	"fmt"

	"car-rental/internal/data/entity"
	"car-rental/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CarRepository interface {
	Create(ctx context.Context, car *entity.Car) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Car, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Car, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, car *entity.Car) error

	// Inventory ledger. Both operations are single conditional UPDATEs so
	// concurrent requests against the same car cannot observe a lost update.
	Allocate(ctx context.Context, id uuid.UUID) error
	Release(ctx context.Context, id uuid.UUID) error

	FleetCounts(ctx context.Context) (total, available, booked int64, err error)
}

type carRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCarRepository(db database.PgxIface, log *zap.Logger) CarRepository {
	return &carRepository{
		db:  db,
		log: log.With(zap.String("repository", "car")),
	}
}

const carColumns = `id, name, brand, daily_rate, total_count, available_count, booked_count, available, location, image_url, created_at, updated_at`

func scanCar(row pgx.Row) (*entity.Car, error) {
	var car entity.Car
	err := row.Scan(
		&car.ID,
		&car.Name,
		&car.Brand,
		&car.DailyRate,
		&car.TotalCount,
		&car.AvailableCount,
		&car.BookedCount,
		&car.Available,
		&car.Location,
		&car.ImageURL,
		&car.CreatedAt,
		&car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *carRepository) Create(ctx context.Context, car *entity.Car) error {
	query := `
		INSERT INTO cars (id, name, brand, daily_rate, total_count, available_count, booked_count, available, location, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		car.ID,
		car.Name,
		car.Brand,
		car.DailyRate,
		car.TotalCount,
		car.AvailableCount,
		car.BookedCount,
		car.Available,
		car.Location,
		car.ImageURL,
		car.CreatedAt,
		car.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create car",
			zap.Error(err),
			zap.String("name", car.Name),
		)
		return fmt.Errorf("create car %s: %w", car.Name, err)
	}

	return nil
}

func (r *carRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`

	car, err := scanCar(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find car by ID",
			zap.Error(err),
			zap.String("car_id", id.String()),
		)
		return nil, fmt.Errorf("find car by ID %s: %w", id.String(), err)
	}

	return car, nil
}

func (r *carRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Car, error) {
	query := `
		SELECT ` + carColumns + `
		FROM cars
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list cars", zap.Error(err))
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	var cars []*entity.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			r.log.Error("Failed to scan car row", zap.Error(err))
			return nil, fmt.Errorf("scan car row: %w", err)
		}
		cars = append(cars, car)
	}

	return cars, nil
}

func (r *carRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cars`).Scan(&count); err != nil {
		r.log.Error("Failed to count cars", zap.Error(err))
		return 0, fmt.Errorf("count cars: %w", err)
	}
	return count, nil
}

// Update writes listing attributes and the new total_count. available_count
// is re-derived from booked_count inside the statement, so an Allocate or
// Release racing with the edit is never overwritten; routine allocation goes
// through Allocate/Release only. The guard on booked_count keeps the total
// from dropping below the units already out.
func (r *carRepository) Update(ctx context.Context, car *entity.Car) error {
	query := `
		UPDATE cars
		SET name = $2, brand = $3, daily_rate = $4, total_count = $5,
		    available_count = $5 - booked_count,
		    available = $5 - booked_count > 0,
		    location = $6, image_url = $7, updated_at = $8
		WHERE id = $1 AND booked_count <= $5
		RETURNING total_count, available_count, booked_count, available
	`

	err := r.db.QueryRow(ctx, query,
		car.ID,
		car.Name,
		car.Brand,
		car.DailyRate,
		car.TotalCount,
		car.Location,
		car.ImageURL,
		car.UpdatedAt,
	).Scan(&car.TotalCount, &car.AvailableCount, &car.BookedCount, &car.Available)

	if err == pgx.ErrNoRows {
		existing, ferr := r.FindByID(ctx, car.ID)
		if ferr != nil {
			return ferr
		}
		if existing == nil {
			return ErrCarNotFound
		}

		r.log.Warn("Car update rejected, total below booked units",
			zap.String("car_id", car.ID.String()),
			zap.Int("requested_total", car.TotalCount),
			zap.Int("booked_count", existing.BookedCount),
		)
		return ErrTotalBelowBooked
	}
	if err != nil {
		r.log.Error("Failed to update car",
			zap.Error(err),
			zap.String("car_id", car.ID.String()),
		)
		return fmt.Errorf("update car %s: %w", car.ID.String(), err)
	}

	return nil
}

// Allocate moves one unit from available to booked. The decrement is guarded
// by available_count > 0 in the same statement, so two concurrent requests
// for the last unit cannot both succeed.
func (r *carRepository) Allocate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE cars
		SET available_count = available_count - 1,
		    booked_count = booked_count + 1,
		    available = available_count - 1 > 0,
		    updated_at = NOW()
		WHERE id = $1 AND available_count > 0
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to allocate unit",
			zap.Error(err),
			zap.String("car_id", id.String()),
		)
		return fmt.Errorf("allocate unit for car %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		car, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if car == nil {
			return ErrCarNotFound
		}

		r.log.Warn("Allocation rejected, no units available",
			zap.String("car_id", id.String()),
			zap.Int("total_count", car.TotalCount),
		)
		return ErrNoUnitsAvailable
	}

	return nil
}

// Release returns one unit from booked to available. The guard on
// booked_count > 0 keeps an extra release from driving the counter negative;
// the mismatch is reported instead of silently absorbed.
func (r *carRepository) Release(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE cars
		SET available_count = available_count + 1,
		    booked_count = booked_count - 1,
		    available = TRUE,
		    updated_at = NOW()
		WHERE id = $1 AND booked_count > 0
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to release unit",
			zap.Error(err),
			zap.String("car_id", id.String()),
		)
		return fmt.Errorf("release unit for car %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		car, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if car == nil {
			return ErrCarNotFound
		}

		r.log.Warn("Release clamped, booked_count already zero",
			zap.String("car_id", id.String()),
			zap.Int("available_count", car.AvailableCount),
			zap.Int("total_count", car.TotalCount),
		)
		return ErrInventoryInconsistency
	}

	return nil
}

func (r *carRepository) FleetCounts(ctx context.Context) (int64, int64, int64, error) {
	query := `
		SELECT COALESCE(SUM(total_count), 0),
		       COALESCE(SUM(available_count), 0),
		       COALESCE(SUM(booked_count), 0)
		FROM cars
	`

	var total, available, booked int64
	if err := r.db.QueryRow(ctx, query).Scan(&total, &available, &booked); err != nil {
		r.log.Error("Failed to aggregate fleet counts", zap.Error(err))
		return 0, 0, 0, fmt.Errorf("aggregate fleet counts: %w", err)
	}

	return total, available, booked, nil
}
