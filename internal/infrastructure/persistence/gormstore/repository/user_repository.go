package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/infrastructure/persistence/gormstore/model"
	"poolkeeper/internal/ports"
)

type UserRepository struct {
	store
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{store{db: db}}
}

func (r *UserRepository) GetUser(ctx context.Context, userID uuid.UUID) (pool.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return pool.User{}, err
	}

	var row model.User
	if err := db.Where("id = ?", userID).Take(&row).Error; err != nil {
		if isRecordNotFound(err) {
			return pool.User{}, errs.NotFound("user %s not found", userID)
		}
		return pool.User{}, errs.Persistence(err, "query user")
	}
	return mapUser(row), nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (pool.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return pool.User{}, err
	}

	var row model.User
	if err := db.Where("email = ?", email).Take(&row).Error; err != nil {
		if isRecordNotFound(err) {
			return pool.User{}, errs.NotFound("user %q not found", email)
		}
		return pool.User{}, errs.Persistence(err, "query user by email")
	}
	return mapUser(row), nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user pool.User) (pool.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return pool.User{}, err
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	row := model.User{
		ID:             user.ID,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		IsActive:       user.IsActive,
	}
	if err := db.Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return pool.User{}, errs.Invalid("user %q already exists", user.Email)
		}
		return pool.User{}, errs.Persistence(err, "insert user")
	}
	return mapUser(row), nil
}

// DeleteUser removes owned rows child-first, then the user row.
func (r *UserRepository) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return r.inTx(ctx, func(_ context.Context, db *gorm.DB) error {
		owned := db.Model(&model.MaintenanceTask{}).Select("id").Where("user_id = ?", userID)
		if err := db.Where("task_id IN (?)", owned).Delete(&model.TaskCompletion{}).Error; err != nil {
			return errs.Persistence(err, "delete user task history")
		}

		for _, table := range []struct {
			name string
			row  any
		}{
			{"tasks", &model.MaintenanceTask{}},
			{"alerts", &model.Alert{}},
			{"inventory", &model.ChemicalInventory{}},
			{"readings", &model.Reading{}},
		} {
			if err := db.Where("user_id = ?", userID).Delete(table.row).Error; err != nil {
				return errs.Persistence(err, "delete user "+table.name)
			}
		}

		result := db.Where("id = ?", userID).Delete(&model.User{})
		if result.Error != nil {
			return errs.Persistence(result.Error, "delete user")
		}
		if result.RowsAffected == 0 {
			return errs.NotFound("user %s not found", userID)
		}
		return nil
	})
}

func mapUser(row model.User) pool.User {
	return pool.User{
		ID:             row.ID,
		Email:          row.Email,
		HashedPassword: row.HashedPassword,
		IsActive:       row.IsActive,
	}
}
