package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/leaderfirst_server/internal/model"
	"github.com/qs3c/leaderfirst_server/internal/testutil"
)

func TestReferralRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewReferralRepository(db)
	owner := testutil.TestUser(t, db, testutil.WithActivePlan("core"))

	rc := &model.ReferralCode{Code: "NEW0001", OwnerID: owner.ID, DiscountPercent: 10, MaxRedemptions: 1, Active: true}
	require.NoError(t, repo.Create(rc))

	require.NotNil(t, rc.ActiveOwnerID)
	assert.Equal(t, owner.ID, *rc.ActiveOwnerID)

	found, err := repo.GetActiveByOwner(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, rc.ID, found.ID)
}

func TestReferralRepository_Create_SecondActiveCodeRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewReferralRepository(db)
	owner := testutil.TestUser(t, db, testutil.WithActivePlan("core"))

	require.NoError(t, repo.Create(&model.ReferralCode{Code: "FIRST01", OwnerID: owner.ID, DiscountPercent: 10, MaxRedemptions: 1, Active: true}))

	err := repo.Create(&model.ReferralCode{Code: "SECOND1", OwnerID: owner.ID, DiscountPercent: 10, MaxRedemptions: 1, Active: true})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	// 失效的码不占用名额
	require.NoError(t, repo.Create(&model.ReferralCode{Code: "OLD0001", OwnerID: owner.ID, DiscountPercent: 10, MaxRedemptions: 1, Active: false}))
}

func TestReferralRepository_Create_DuplicateCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewReferralRepository(db)
	a := testutil.TestUser(t, db, testutil.WithActivePlan("core"))
	b := testutil.TestUser(t, db, testutil.WithActivePlan("core"))

	testutil.TestReferralCode(t, db, a.ID, testutil.WithCode("SAME001"))

	err := repo.Create(&model.ReferralCode{Code: "SAME001", OwnerID: b.ID, DiscountPercent: 10, MaxRedemptions: 1, Active: true})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	exists, err := repo.ExistsByCode("SAME001")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestReferralRepository_Lookups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewReferralRepository(db)
	owner := testutil.TestUser(t, db, testutil.WithActivePlan("core"))
	testutil.TestReferralCode(t, db, owner.ID, testutil.WithCode("GONE001"), testutil.WithInactive())
	active := testutil.TestReferralCode(t, db, owner.ID, testutil.WithCode("LIVE001"))

	found, err := repo.GetActiveByOwner(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)

	_, err = repo.GetActiveByCode("GONE001")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := repo.ExistsByCode("GONE001")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestReferralRepository_ListByOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewReferralRepository(db)
	owner := testutil.TestUser(t, db, testutil.WithActivePlan("core"))
	other := testutil.TestUser(t, db, testutil.WithActivePlan("core"))
	old := testutil.TestReferralCode(t, db, owner.ID, testutil.WithCode("OLD0001"), testutil.WithInactive())
	current := testutil.TestReferralCode(t, db, owner.ID, testutil.WithCode("CUR0001"))
	testutil.TestReferralCode(t, db, other.ID, testutil.WithCode("OTH0001"))

	list, err := repo.ListByOwner(owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []int64{current.ID, old.ID}, []int64{list[0].ID, list[1].ID})
}

func TestReferralRepository_Redeem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewReferralRepository(db)
	owner := testutil.TestUser(t, db, testutil.WithActivePlan("core"))
	buyer1 := testutil.TestUser(t, db)
	buyer2 := testutil.TestUser(t, db)
	rc := testutil.TestReferralCode(t, db, owner.ID, testutil.WithCode("TWICE01"), testutil.WithMaxRedemptions(2))

	first, err := repo.Redeem("TWICE01", buyer1.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, first.Redemptions)
	assert.True(t, first.Active)

	second, err := repo.Redeem("TWICE01", buyer2.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 2, second.Redemptions)
	assert.False(t, second.Active)

	third, err := repo.Redeem("TWICE01", buyer1.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, third)

	log, err := repo.ListRedemptions(rc.ID)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, buyer1.ID, log[0].UserID)
	assert.Equal(t, buyer2.ID, log[1].UserID)

	// 用完后作者可以再建新码
	require.NoError(t, repo.Create(&model.ReferralCode{Code: "NEXT001", OwnerID: owner.ID, DiscountPercent: 10, MaxRedemptions: 1, Active: true}))
}

func TestReferralRepository_Redeem_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewReferralRepository(db)

	rc, err := repo.Redeem("MISSING", 1, nil)
	require.NoError(t, err)
	assert.Nil(t, rc)
}

func TestReferralRepository_AttachPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewReferralRepository(db)
	owner := testutil.TestUser(t, db, testutil.WithActivePlan("core"))
	buyer := testutil.TestUser(t, db)
	rc := testutil.TestReferralCode(t, db, owner.ID, testutil.WithCode("ATTACH1"))
	payment := testutil.TestPayment(t, db, buyer.ID)

	_, err := repo.Redeem("ATTACH1", buyer.ID, nil)
	require.NoError(t, err)

	require.NoError(t, repo.AttachPayment(rc.ID, buyer.ID, payment.ID))

	log, err := repo.ListRedemptions(rc.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	require.NotNil(t, log[0].PaymentID)
	assert.Equal(t, payment.ID, *log[0].PaymentID)
}
