package rdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"barriored/internal/model"
	"barriored/internal/moderation"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var pendingBiz = &model.Business{ID: 5, CommunityID: 1, OwnerID: 7, Name: "Panaderia La 14", Status: moderation.StatusPending}

func TestBusinessFindByIDScopedByTenant(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &BusinessRepository{DB: db}

	mock.ExpectQuery("SELECT \\* FROM `businesses` WHERE .*community_id = \\? AND id = \\?.*deleted_at. IS NULL").
		WillReturnRows(sqlmock.NewRows([]string{"id", "community_id", "owner_id", "name", "status", "is_active"}).
			AddRow(5, 1, 7, "Panaderia La 14", "approved", true))

	b, err := repo.FindByID(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), b.ID)
	assert.Equal(t, moderation.StatusApproved, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessFindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &BusinessRepository{DB: db}

	mock.ExpectQuery("SELECT \\* FROM `businesses` WHERE .*community_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), 2, 5)
	assert.ErrorIs(t, err, moderation.ErrNotFound)
}

func TestBusinessListApprovedFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &BusinessRepository{DB: db}

	mock.ExpectQuery("SELECT \\* FROM `businesses` WHERE .*community_id = \\? AND status = \\? AND is_active = \\?.*category_id = \\?.*LOWER\\(name\\) LIKE \\? ESCAPE '!' OR LOWER\\(description\\) LIKE \\? ESCAPE '!'.*ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "community_id", "name"}).AddRow(5, 1, "Panaderia"))

	list, err := repo.ListApproved(context.Background(), 1, BusinessFilter{CategoryID: 3, Query: " Pan "})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessSearchEscapesWildcards(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &BusinessRepository{DB: db}

	mock.ExpectQuery("LOWER\\(name\\) LIKE \\? ESCAPE '!'").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "%50!% off!_!!%", "%50!% off!_!!%", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, err := repo.ListApproved(context.Background(), 1, BusinessFilter{Query: "50% OFF_!"})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "pan", escapeLike("pan"))
	assert.Equal(t, "!%", escapeLike("%"))
	assert.Equal(t, "a!_b!!", escapeLike("a_b!"))
}

func TestBusinessSetStatusWritesOutbox(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &BusinessRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `businesses` SET .*status.* WHERE .*community_id = \\? AND id = \\? AND status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `moderation_outbox`").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	err := repo.SetStatus(context.Background(), pendingBiz, moderation.StatusApproved, 99)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessSetStatusAlreadyDecided(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &BusinessRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `businesses` SET .*status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SetStatus(context.Background(), pendingBiz, moderation.StatusRejected, 99)
	assert.ErrorIs(t, err, moderation.ErrIllegalTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessDeleteSoftDeletesAndWritesOutbox(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &BusinessRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `businesses` SET `deleted_at`=\\? WHERE .*community_id = \\? AND id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `moderation_outbox`").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), pendingBiz, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessCreatePromotesOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &BusinessRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `businesses`").WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("UPDATE `users` SET `role`=\\?").
		WithArgs(moderation.RoleMerchant, sqlmock.AnyArg(), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `moderation_outbox`").WillReturnResult(sqlmock.NewResult(13, 1))
	mock.ExpectCommit()

	b := &model.Business{CommunityID: 1, OwnerID: 7, Name: "Ferreteria", Slug: "ferreteria", Status: moderation.StatusPending}
	require.NoError(t, repo.Create(context.Background(), b, moderation.RoleMerchant))
	assert.Equal(t, uint64(21), b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostFeedOrdering(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PostRepository{DB: db}

	mock.ExpectQuery("SELECT \\* FROM `community_posts` WHERE .*community_id = \\? AND status = \\?.*type = \\?.*ORDER BY is_pinned DESC, created_at DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "community_id", "type"}).AddRow(1, 1, "event"))

	list, err := repo.ListApproved(context.Background(), 1, model.PostEvent, 500)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostListByAuthorScoped(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PostRepository{DB: db}

	mock.ExpectQuery("SELECT \\* FROM `community_posts` WHERE .*community_id = \\? AND author_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, err := repo.ListByAuthor(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAlertListActiveOrdering(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &AlertRepository{DB: db}

	mock.ExpectQuery("SELECT \\* FROM `community_alerts` WHERE .*community_id = \\? AND is_active = \\?.*ends_at IS NULL OR ends_at > \\?.*ORDER BY CASE severity").
		WillReturnRows(sqlmock.NewRows([]string{"id", "severity"}).AddRow(2, "critical").AddRow(1, "info"))

	list, err := repo.ListActive(context.Background(), 1, time.Now())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "critical", list[0].Severity)
}

func TestAlertExpireEnded(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &AlertRepository{DB: db}

	mock.ExpectExec("UPDATE `community_alerts` SET `is_active`=\\?.* WHERE .*community_id = \\? AND is_active = \\? AND ends_at IS NOT NULL AND ends_at <= \\?").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ExpireEnded(context.Background(), 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestPublicServiceDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &PublicServiceRepository{DB: db}

	mock.ExpectExec("DELETE FROM `public_services` WHERE .*community_id = \\? AND id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 1, 40), moderation.ErrNotFound)
}

func TestOutboxListIncludesRetrying(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &OutboxRepository{DB: db, MaxRetry: 5}

	mock.ExpectQuery("SELECT \\* FROM `moderation_outbox` WHERE status IN \\(\\?,\\?\\) AND retry < \\?.*ORDER BY id ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_type", "status"}).AddRow(1, "approved", 2))

	list, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.OutboxRetrying, list[0].Status)
}

func TestFindOrCreateByPhoneExisting(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &UserRepository{DB: db}

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE phone = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "phone", "role"}).
			AddRow(3, "573001234567@whatsapp.barriored.co", "573001234567", "neighbor"))

	u, created, err := repo.FindOrCreateByPhone(context.Background(), "573001234567", "573001234567@whatsapp.barriored.co")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, uint64(3), u.ID)
}

func TestFindOrCreateByPhoneNew(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &UserRepository{DB: db}

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE phone = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(8, 1))

	u, created, err := repo.FindOrCreateByPhone(context.Background(), "573001234567", "573001234567@whatsapp.barriored.co")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(8), u.ID)
	assert.Equal(t, moderation.RoleNeighbor, u.Role)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), moderation.ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), moderation.ErrConflict)
	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0, 20, 100))
	assert.Equal(t, 100, clampLimit(500, 20, 100))
	assert.Equal(t, 7, clampLimit(7, 20, 100))
}
