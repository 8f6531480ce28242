// Package usecase はuserフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"evolve_backend/internal/feature/user/domain"
	"evolve_backend/internal/feature/user/domain/entity"
)

// Profile はIDプロバイダーから受け取るユーザーのプロフィール情報です。
type Profile struct {
	ClerkID   string
	Email     string
	FirstName string
	LastName  string
	Photo     string
}

// userUsecase はアカウント同期とプロフィール参照を提供します。
type userUsecase struct {
	store Store
}

// NewUserUsecase はuserUsecaseの新しいインスタンスを生成します。
func NewUserUsecase(store Store) *userUsecase {
	return &userUsecase{store: store}
}

// Sync は初回ログイン時にユーザーを作成し、既存ユーザーであればプロフィールを更新して返します。
// createdは新規作成された場合にtrueになります。
// 同時ログインでCreateが競合した場合は、先に作成されたユーザーを読み直して返します。
func (u *userUsecase) Sync(ctx context.Context, p Profile) (*entity.User, bool, error) {
	p.ClerkID = strings.TrimSpace(p.ClerkID)
	p.Email = strings.TrimSpace(p.Email)
	if p.ClerkID == "" || p.Email == "" {
		return nil, false, fmt.Errorf("%w: clerk id and email are required", domain.ErrValidation)
	}

	existing, err := u.store.FindByIdentity(ctx, p.ClerkID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if !profileChanged(existing, p) {
			return existing, false, nil
		}
		existing.Email = p.Email
		existing.FirstName = p.FirstName
		existing.LastName = p.LastName
		existing.Photo = p.Photo
		if err := u.store.Save(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	user := entity.NewUser(p.ClerkID, p.Email, p.FirstName, p.LastName, p.Photo)
	if err := u.store.Create(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrDuplicateIdentity) {
			return nil, false, err
		}
		// 初回ログインの競合: 勝った側のレコードを返す
		log.Debug().Str("clerk_id", p.ClerkID).Msg("duplicate identity on first login, re-reading")
		winner, findErr := u.store.FindByIdentity(ctx, p.ClerkID)
		if findErr != nil {
			return nil, false, findErr
		}
		if winner == nil {
			return nil, false, err
		}
		return winner, false, nil
	}
	return user, true, nil
}

// Get は指定されたIDのユーザーを返します。存在しない場合はdomain.ErrUserNotFoundを返します。
func (u *userUsecase) Get(ctx context.Context, clerkID string) (*entity.User, error) {
	user, err := u.store.FindByIdentity(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func profileChanged(u *entity.User, p Profile) bool {
	return u.Email != p.Email || u.FirstName != p.FirstName || u.LastName != p.LastName || u.Photo != p.Photo
}
