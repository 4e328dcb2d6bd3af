package service

import (
	"context"
	"fmt"

	"github.com/satstacker/satstacker.go/common"
	"github.com/satstacker/satstacker.go/db/models"
	"github.com/satstacker/satstacker.go/lib/tokens"
	"golang.org/x/crypto/bcrypt"
)

func (svc *SatstackerService) CreateUser(ctx context.Context, login string, password string, nickname string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Login:    login,
		Password: string(hashed),
		Nickname: nickname,
	}
	_, err = svc.DB.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (svc *SatstackerService) GenerateToken(ctx context.Context, login, password string) (accessToken string, err error) {
	var user models.User

	if login == "" || password == "" {
		return "", fmt.Errorf("login and password are required")
	}
	if err := svc.DB.NewSelect().Model(&user).Where("login = ?", login).Scan(ctx); err != nil {
		return "", fmt.Errorf("bad auth")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", fmt.Errorf("bad auth")
	}

	return tokens.GenerateAccessToken(svc.Config.JWTSecret, svc.Config.JWTAccessTokenExpiry, &user)
}

func (svc *SatstackerService) FindUser(ctx context.Context, userId string) (*models.User, error) {
	var user models.User
	err := svc.DB.NewSelect().Model(&user).Where("id = ?", userId).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserSettings are the wallet-related fields a user can change. Empty
// strings leave the stored value untouched.
type UserSettings struct {
	Nickname         string
	LightningAddress string
	NostrPubkey      string
	NostrSecret      string
	NWCUri           string
}

func (svc *SatstackerService) UpdateUserSettings(ctx context.Context, userId string, settings UserSettings) (*models.User, error) {
	user, err := svc.FindUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	if settings.Nickname != "" {
		user.Nickname = settings.Nickname
	}
	if settings.LightningAddress != "" {
		user.LightningAddress = settings.LightningAddress
	}
	if settings.NostrPubkey != "" {
		user.NostrPubkey = settings.NostrPubkey
	}
	if settings.NostrSecret != "" {
		user.NostrSecret = settings.NostrSecret
	}
	if settings.NWCUri != "" {
		user.NWCUri = settings.NWCUri
	}
	_, err = svc.DB.NewUpdate().Model(user).WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RecomputeEarnedSats repairs a user's earned-sats aggregate from the
// ledger: the sum of all paid zaps directed at them. The aggregate is
// normally maintained incrementally on settlement.
func (svc *SatstackerService) RecomputeEarnedSats(ctx context.Context, userId string) (int64, error) {
	var total int64
	err := svc.DB.NewSelect().Model((*models.Zap)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("to_user_id = ?", userId).
		Where("state = ?", common.ZapStatePaid).
		Scan(ctx, &total)
	if err != nil {
		return 0, err
	}

	_, err = svc.DB.NewUpdate().Model((*models.User)(nil)).
		Set("total_sats_earned = ?", total).
		Where("id = ?", userId).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return total, nil
}
