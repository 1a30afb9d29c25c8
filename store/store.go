package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/r2w34/fb-ai-sys-sub001/pkg/facebook"
)

// ErrNotConnected is returned when a shop has no active Facebook account.
var ErrNotConnected = errors.New("shop has no active facebook account")

// Store persists linked accounts and their discovered assets in postgres.
type Store struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(db *sql.DB) *Store {
	return &Store{
		db:    db,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor serializes reconciliation per (shop, facebook user). Concurrent
// callbacks for the same pair would otherwise interleave the replacement
// writes.
func (s *Store) lockFor(shop, facebookUserID string) *sync.Mutex {
	key := shop + "|" + facebookUserID
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locks[key]; !ok {
		s.locks[key] = &sync.Mutex{}
	}
	return s.locks[key]
}

// Reconcile merges one discovery pass into the database as a single
// transaction: upsert the account, then replace the dependent ad account,
// page and Instagram collections so they exactly mirror the discovery.
func (s *Store) Reconcile(ctx context.Context, shop, accessToken string, assets *facebook.DiscoveredAssets) (*FacebookAccount, error) {
	lock := s.lockFor(shop, assets.Identity.ID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting reconciliation transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := upsertAccount(ctx, tx, shop, accessToken, assets)
	if err != nil {
		return nil, err
	}

	if len(assets.AdAccounts) > 0 {
		if err := replaceAdAccounts(ctx, tx, account.ID, assets); err != nil {
			return nil, err
		}
	}

	if len(assets.Pages) > 0 {
		if err := replacePages(ctx, tx, account.ID, assets); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing reconciliation transaction: %w", err)
	}

	log.Printf("🗄️ STORE: reconciled shop %s: %d ad accounts, %d pages, %d Instagram accounts",
		shop, len(assets.AdAccounts), len(assets.Pages), len(assets.InstagramAccounts))
	return account, nil
}

func upsertAccount(ctx context.Context, tx *sql.Tx, shop, accessToken string, assets *facebook.DiscoveredAssets) (*FacebookAccount, error) {
	// A shop has at most one active account at a time.
	if _, err := tx.ExecContext(ctx, `
        UPDATE facebook_accounts
        SET is_active = FALSE, updated_at = NOW()
        WHERE shop = $1 AND facebook_user_id <> $2 AND is_active = TRUE
    `, shop, assets.Identity.ID); err != nil {
		return nil, fmt.Errorf("error deactivating previous accounts: %w", err)
	}

	account := &FacebookAccount{
		Shop:               shop,
		FacebookUserID:     assets.Identity.ID,
		Name:               assets.Identity.Name,
		Email:              assets.Identity.Email,
		AccessToken:        accessToken,
		BusinessID:         assets.BusinessID,
		DefaultAdAccountID: assets.DefaultAdAccountID,
		IsActive:           true,
	}

	err := tx.QueryRowContext(ctx, `
        INSERT INTO facebook_accounts (
            shop, facebook_user_id, name, email, access_token,
            business_id, default_ad_account_id, is_active, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW())
        ON CONFLICT (shop, facebook_user_id) DO UPDATE
        SET name = EXCLUDED.name,
            email = EXCLUDED.email,
            access_token = EXCLUDED.access_token,
            business_id = EXCLUDED.business_id,
            default_ad_account_id = EXCLUDED.default_ad_account_id,
            is_active = TRUE,
            updated_at = NOW()
        RETURNING id, created_at, updated_at
    `, shop, assets.Identity.ID, assets.Identity.Name, assets.Identity.Email, accessToken,
		nullString(assets.BusinessID), nullString(assets.DefaultAdAccountID),
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error upserting facebook account: %w", err)
	}

	return account, nil
}

func replaceAdAccounts(ctx context.Context, tx *sql.Tx, accountID string, assets *facebook.DiscoveredAssets) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM ad_accounts WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("error clearing ad accounts: %w", err)
	}

	for _, adAccount := range assets.AdAccounts {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO ad_accounts (
                account_id, ad_account_id, name, currency, timezone, account_status, is_default, created_at
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        `, accountID, adAccount.ID, adAccount.Name, adAccount.Currency,
			nullString(adAccount.Timezone), adAccount.Status,
			adAccount.ID == assets.DefaultAdAccountID)
		if err != nil {
			return fmt.Errorf("error inserting ad account %s: %w", adAccount.ID, err)
		}
	}
	return nil
}

func replacePages(ctx context.Context, tx *sql.Tx, accountID string, assets *facebook.DiscoveredAssets) error {
	// Instagram rows hang off page rows, so they go first.
	if _, err := tx.ExecContext(ctx, `
        DELETE FROM instagram_accounts
        WHERE page_row_id IN (SELECT id FROM pages WHERE account_id = $1)
    `, accountID); err != nil {
		return fmt.Errorf("error clearing instagram accounts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("error clearing pages: %w", err)
	}

	instagramByPage := make(map[string]facebook.InstagramAccount, len(assets.InstagramAccounts))
	for _, account := range assets.InstagramAccounts {
		instagramByPage[account.PageID] = account
	}

	for _, page := range assets.Pages {
		var pageRowID string
		err := tx.QueryRowContext(ctx, `
            INSERT INTO pages (account_id, page_id, name, access_token, category, created_at)
            VALUES ($1, $2, $3, $4, $5, NOW())
            RETURNING id
        `, accountID, page.ID, page.Name, page.AccessToken, nullString(page.Category)).Scan(&pageRowID)
		if err != nil {
			return fmt.Errorf("error inserting page %s: %w", page.ID, err)
		}

		instagram, ok := instagramByPage[page.ID]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO instagram_accounts (page_row_id, instagram_id, name, username, profile_picture_url, created_at)
            VALUES ($1, $2, $3, $4, $5, NOW())
        `, pageRowID, instagram.ID, nullString(instagram.Name), instagram.Username,
			nullString(instagram.ProfilePictureURL)); err != nil {
			return fmt.Errorf("error inserting instagram account %s: %w", instagram.ID, err)
		}
	}
	return nil
}

// Deactivate soft-deletes the shop's active account. Assets stay in place so
// a reconnect by the same user restores them on the next discovery pass.
func (s *Store) Deactivate(ctx context.Context, shop string) error {
	result, err := s.db.ExecContext(ctx, `
        UPDATE facebook_accounts
        SET is_active = FALSE, updated_at = NOW()
        WHERE shop = $1 AND is_active = TRUE
    `, shop)
	if err != nil {
		return fmt.Errorf("error deactivating account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotConnected
	}
	return nil
}

// Status returns the connection snapshot for a shop.
func (s *Store) Status(ctx context.Context, shop string) (*ConnectionStatus, error) {
	status := &ConnectionStatus{}

	var accountID string
	var businessID, defaultAdAccountID sql.NullString
	err := s.db.QueryRowContext(ctx, `
        SELECT id, facebook_user_id, name, business_id, default_ad_account_id, updated_at
        FROM facebook_accounts
        WHERE shop = $1 AND is_active = TRUE
        ORDER BY updated_at DESC
        LIMIT 1
    `, shop).Scan(&accountID, &status.FacebookUserID, &status.Name,
		&businessID, &defaultAdAccountID, &status.ConnectedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading account status: %w", err)
	}

	status.Connected = true
	status.BusinessID = businessID.String
	status.DefaultAdAccountID = defaultAdAccountID.String

	err = s.db.QueryRowContext(ctx, `
        SELECT
            (SELECT COUNT(*) FROM ad_accounts WHERE account_id = $1),
            (SELECT COUNT(*) FROM pages WHERE account_id = $1),
            (SELECT COUNT(*) FROM instagram_accounts
             WHERE page_row_id IN (SELECT id FROM pages WHERE account_id = $1))
    `, accountID).Scan(&status.AdAccounts, &status.Pages, &status.InstagramAccounts)
	if err != nil {
		return nil, fmt.Errorf("error counting assets: %w", err)
	}

	return status, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
