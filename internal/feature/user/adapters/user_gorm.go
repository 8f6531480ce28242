// Package adapters はuserフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"evolve_backend/internal/feature/user/domain"
	"evolve_backend/internal/feature/user/domain/entity"
	"evolve_backend/internal/feature/user/usecase"
)

// userGorm はStoreインターフェースのGORM実装です（PostgreSQL / SQLite）。
// 使用量は usage_records テーブルに (user_id, day) 一意で保存します。
type userGorm struct {
	db *gorm.DB
}

// userGormがStoreを実装していることをコンパイル時に検証します。
var _ usecase.Store = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// FindByIdentity はClerk IDでユーザーを取得します。存在しない場合は (nil, nil) を返します。
func (r *userGorm) FindByIdentity(ctx context.Context, clerkID string) (*entity.User, error) {
	var m UserModel
	err := r.db.WithContext(ctx).
		Preload("Usage", func(db *gorm.DB) *gorm.DB { return db.Order("day ASC") }).
		Where("clerk_id = ?", clerkID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return m.ToEntity(), nil
}

// Create はユーザーをデータベースに追加します。
// Clerk IDが重複する場合はdomain.ErrDuplicateIdentity、メールアドレスが重複する場合はdomain.ErrValidationを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return domain.ErrValidation
	}
	if err := u.Validate(); err != nil {
		return err
	}

	m := UserModelFromEntity(u)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return err
		}
		if rows := usageRowsFromEntity(m.ID, u); len(rows) > 0 {
			return tx.Create(&rows).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var n int64
			if cErr := r.db.WithContext(ctx).Model(&UserModel{}).Where("clerk_id = ?", u.ClerkID).Count(&n).Error; cErr == nil && n > 0 {
				return domain.ErrDuplicateIdentity
			}
		}
		return translateError(err)
	}
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}

// Save は既存ユーザーのプロフィール・プラン・使用量・メトリクスを永続化します。
// 使用量レコードはエンティティの内容に合わせて置き換えます。
func (r *userGorm) Save(ctx context.Context, u *entity.User) error {
	if u == nil {
		return domain.ErrValidation
	}
	if err := u.Validate(); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := lookupID(tx, u.ClerkID)
		if err != nil {
			return err
		}

		m := UserModelFromEntity(u)
		updates := map[string]any{
			"email":               m.Email,
			"first_name":          m.FirstName,
			"last_name":           m.LastName,
			"photo":               m.Photo,
			"subscription_plan":   m.SubscriptionPlan,
			"conversations":       m.Conversations,
			"images_generated":    m.ImagesGenerated,
			"dictionary_searches": m.DictionarySearches,
			"audio_conversions":   m.AudioConversions,
		}
		for k, v := range detailsColumns(u.SubscriptionDetails) {
			updates[k] = v
		}
		if err := tx.Model(&UserModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		rows := usageRowsFromEntity(id, u)
		keys := make([]string, 0, len(rows))
		for _, row := range rows {
			keys = append(keys, row.Day)
		}
		del := tx.Where("user_id = ?", id)
		if len(keys) > 0 {
			del = del.Where("day NOT IN ?", keys)
		}
		if err := del.Delete(&UsageRecordModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns([]string{"date", "transaction_count"}),
		}).Create(&rows).Error
	})
	return translateError(err)
}

// IncrementUsage はFreeプランの当日使用量を条件付きupsertで1件加算します。
// limit > 0 の場合、transaction_count < limit のときだけ更新されるため、判定と記録が1文で原子的に行われます。
func (r *userGorm) IncrementUsage(ctx context.Context, clerkID string, day time.Time, limit int, metric entity.Metric) (entity.UsageResult, error) {
	day = entity.StartOfDay(day.In(time.Local))
	key := entity.DayKey(day)

	var res entity.UsageResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m UserModel
		if err := tx.Select("id", "subscription_plan").Where("clerk_id = ?", clerkID).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}
		res.Plan = entity.Plan(m.SubscriptionPlan)
		if res.Plan.IsPaid() {
			return nil
		}

		onConflict := clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{
				"transaction_count": gorm.Expr("usage_records.transaction_count + 1"),
			}),
		}
		if limit > 0 {
			onConflict.Where = clause.Where{Exprs: []clause.Expression{
				gorm.Expr("usage_records.transaction_count < ?", limit),
			}}
		}
		row := UsageRecordModel{UserID: m.ID, Day: key, Date: day, TransactionCount: 1}
		result := tx.Clauses(onConflict).Create(&row)
		if result.Error != nil {
			return result.Error
		}
		res.Applied = result.RowsAffected > 0

		if err := tx.Model(&UsageRecordModel{}).
			Select("transaction_count").
			Where("user_id = ? AND day = ?", m.ID, key).
			Scan(&res.Count).Error; err != nil {
			return err
		}

		if col, ok := metricColumns[metric]; ok && res.Applied {
			return tx.Model(&UserModel{}).Where("id = ?", m.ID).
				UpdateColumn(col, gorm.Expr(col+" + 1")).Error
		}
		return nil
	})
	if err != nil {
		return entity.UsageResult{}, translateError(err)
	}
	return res, nil
}

// DecrementUsage はIncrementUsageで加算した1件を取り消します。0未満にはなりません。
func (r *userGorm) DecrementUsage(ctx context.Context, clerkID string, day time.Time, metric entity.Metric) error {
	key := entity.DayKey(entity.StartOfDay(day.In(time.Local)))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := lookupID(tx, clerkID)
		if err != nil {
			return err
		}
		if err := tx.Model(&UsageRecordModel{}).
			Where("user_id = ? AND day = ? AND transaction_count > 0", id, key).
			UpdateColumn("transaction_count", gorm.Expr("transaction_count - 1")).Error; err != nil {
			return err
		}
		if col, ok := metricColumns[metric]; ok {
			return tx.Model(&UserModel{}).
				Where("id = ? AND "+col+" > 0", id).
				UpdateColumn(col, gorm.Expr(col+" - 1")).Error
		}
		return nil
	})
	return translateError(err)
}

// ApplySubscription はプランと契約情報を1トランザクションで更新します。
// 有料プランの場合は同じトランザクション内で使用量を削除し、メトリクスを0に戻します。
func (r *userGorm) ApplySubscription(ctx context.Context, clerkID string, plan entity.Plan, details *entity.SubscriptionDetails) (*entity.User, error) {
	if !plan.Valid() {
		return nil, domain.ErrInvalidPlan
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := lookupID(tx, clerkID)
		if err != nil {
			return err
		}

		updates := detailsColumns(details)
		updates["subscription_plan"] = string(plan)
		if plan.IsPaid() {
			for _, col := range metricColumns {
				updates[col] = 0
			}
			if err := tx.Where("user_id = ?", id).Delete(&UsageRecordModel{}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&UserModel{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, translateError(err)
	}

	u, err := r.FindByIdentity(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// lookupID はClerk IDから内部の主キーを取得します。
func lookupID(tx *gorm.DB, clerkID string) (uint, error) {
	var m UserModel
	if err := tx.Select("id").Where("clerk_id = ?", clerkID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}
	return m.ID, nil
}
