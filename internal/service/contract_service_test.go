package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TDXM1001/zugou-rental/internal/config"
	"github.com/TDXM1001/zugou-rental/internal/model"
)

var (
	adminActor    = model.Principal{UserID: 1, Role: model.RoleAdmin}
	landlordActor = model.Principal{UserID: 10, Role: model.RoleLandlord}
	tenantActor   = model.Principal{UserID: 20, Role: model.RoleTenant}
	strangerActor = model.Principal{UserID: 30, Role: model.RoleTenant}
)

func newTestService(store *fakeStore) *ContractService {
	cfg := &config.Config{Contracts: config.ContractsConfig{ExpiringDays: 30}}
	return NewContractService(store, &stubExcel{}, &stubPDF{}, cfg)
}

func seedParties(store *fakeStore) {
	store.addUser(model.User{ID: 1, Name: "Admin", Role: model.RoleAdmin, Status: model.UserStatusActive})
	store.addUser(model.User{ID: 10, Name: "Landlord Li", Role: model.RoleLandlord, Status: model.UserStatusActive})
	store.addUser(model.User{ID: 20, Name: "Tenant Wang", Role: model.RoleTenant, Status: model.UserStatusActive})
	store.addUser(model.User{ID: 30, Name: "Tenant Zhao", Role: model.RoleTenant, Status: model.UserStatusActive})
	store.addProperty(model.Property{ID: 100, LandlordID: 10, Title: "Sunrise 2-1-501", Status: model.PropertyStatusAvailable})
}

func validInput() CreateContractInput {
	return CreateContractInput{
		LandlordID:    10,
		TenantID:      20,
		PropertyID:    100,
		MonthlyRent:   350000,
		Deposit:       700000,
		ManagementFee: 20000,
		SignedDate:    date(2024, 1, 1),
		EffectiveDate: date(2024, 1, 1),
		ExpiryDate:    date(2024, 12, 31),
		LeaseDuration: 12,
		PaymentMethod: model.PaymentMonthly,
		PaymentDay:    5,
		Terms:         model.JSONMap{"pets": "not allowed"},
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestCreateContract(t *testing.T) {
	ctx := context.Background()

	t.Run("landlord creates draft contract", func(t *testing.T) {
		store := newFakeStore()
		seedParties(store)
		svc := newTestService(store)

		contract, err := svc.CreateContract(ctx, validInput(), landlordActor)
		require.NoError(t, err)
		assert.Equal(t, model.ContractStatusDraft, contract.Status)
		assert.Regexp(t, regexp.MustCompile(`^CT\d{8}[0-9A-F]{6}$`), contract.ContractNumber)
		assert.NotZero(t, contract.ID)
	})

	t.Run("admin creates on behalf of landlord", func(t *testing.T) {
		store := newFakeStore()
		seedParties(store)
		svc := newTestService(store)

		_, err := svc.CreateContract(ctx, validInput(), adminActor)
		require.NoError(t, err)
	})

	t.Run("tenant cannot create", func(t *testing.T) {
		store := newFakeStore()
		seedParties(store)
		svc := newTestService(store)

		_, err := svc.CreateContract(ctx, validInput(), tenantActor)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("another landlord cannot create for this landlord", func(t *testing.T) {
		store := newFakeStore()
		seedParties(store)
		store.addUser(model.User{ID: 11, Name: "Landlord Chen", Role: model.RoleLandlord, Status: model.UserStatusActive})
		svc := newTestService(store)

		_, err := svc.CreateContract(ctx, validInput(), model.Principal{UserID: 11, Role: model.RoleLandlord})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("same landlord and tenant rejected before persistence", func(t *testing.T) {
		store := newFakeStore()
		seedParties(store)
		svc := newTestService(store)

		input := validInput()
		input.TenantID = input.LandlordID
		_, err := svc.CreateContract(ctx, input, landlordActor)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, store.contracts)
	})

	t.Run("effective date before signed date rejected", func(t *testing.T) {
		store := newFakeStore()
		seedParties(store)
		svc := newTestService(store)

		input := validInput()
		input.SignedDate = date(2024, 1, 15)
		input.EffectiveDate = date(2024, 1, 10)
		_, err := svc.CreateContract(ctx, input, landlordActor)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, store.contracts)
	})

	t.Run("missing property", func(t *testing.T) {
		store := newFakeStore()
		seedParties(store)
		svc := newTestService(store)

		input := validInput()
		input.PropertyID = 999
		_, err := svc.CreateContract(ctx, input, landlordActor)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing tenant", func(t *testing.T) {
		store := newFakeStore()
		seedParties(store)
		svc := newTestService(store)

		input := validInput()
		input.TenantID = 999
		_, err := svc.CreateContract(ctx, input, landlordActor)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("property of another landlord rejected", func(t *testing.T) {
		store := newFakeStore()
		seedParties(store)
		store.addUser(model.User{ID: 11, Name: "Landlord Chen", Role: model.RoleLandlord, Status: model.UserStatusActive})
		store.addProperty(model.Property{ID: 101, LandlordID: 11, Status: model.PropertyStatusAvailable})
		svc := newTestService(store)

		input := validInput()
		input.PropertyID = 101
		_, err := svc.CreateContract(ctx, input, landlordActor)
		assert.ErrorIs(t, err, ErrBusinessRule)
	})

	t.Run("property under maintenance rejected", func(t *testing.T) {
		store := newFakeStore()
		seedParties(store)
		store.addProperty(model.Property{ID: 102, LandlordID: 10, Status: model.PropertyStatusMaintenance})
		svc := newTestService(store)

		input := validInput()
		input.PropertyID = 102
		_, err := svc.CreateContract(ctx, input, landlordActor)
		assert.ErrorIs(t, err, ErrBusinessRule)
	})

	t.Run("inactive tenant rejected", func(t *testing.T) {
		store := newFakeStore()
		seedParties(store)
		store.addUser(model.User{ID: 21, Name: "Dormant", Role: model.RoleTenant, Status: model.UserStatusBanned})
		svc := newTestService(store)

		input := validInput()
		input.TenantID = 21
		_, err := svc.CreateContract(ctx, input, landlordActor)
		assert.ErrorIs(t, err, ErrBusinessRule)
	})

	t.Run("landlord as tenant rejected", func(t *testing.T) {
		store := newFakeStore()
		seedParties(store)
		store.addUser(model.User{ID: 12, Name: "Landlord Wu", Role: model.RoleLandlord, Status: model.UserStatusActive})
		svc := newTestService(store)

		input := validInput()
		input.TenantID = 12
		_, err := svc.CreateContract(ctx, input, landlordActor)
		assert.ErrorIs(t, err, ErrBusinessRule)
	})
}

func TestCreateContractOverlap(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedParties(store)
	svc := newTestService(store)

	first, err := svc.CreateContract(ctx, validInput(), landlordActor)
	require.NoError(t, err)
	_, err = svc.SignContract(ctx, first.ID, landlordActor)
	require.NoError(t, err)
	_, err = svc.ActivateContract(ctx, first.ID, landlordActor)
	require.NoError(t, err)

	// Overlaps the active contract in the middle of its term.
	input := validInput()
	input.TenantID = 30
	input.EffectiveDate = date(2024, 6, 1)
	input.ExpiryDate = date(2025, 1, 1)
	input.LeaseDuration = 7
	_, err = svc.CreateContract(ctx, input, landlordActor)
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), first.ContractNumber)

	// A draft contract does not reserve the window.
	store2 := newFakeStore()
	seedParties(store2)
	svc2 := newTestService(store2)
	_, err = svc2.CreateContract(ctx, validInput(), landlordActor)
	require.NoError(t, err)
	input2 := validInput()
	input2.TenantID = 30
	_, err = svc2.CreateContract(ctx, input2, landlordActor)
	assert.NoError(t, err)
}

func TestContractLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedParties(store)
	svc := newTestService(store)

	contract, err := svc.CreateContract(ctx, validInput(), landlordActor)
	require.NoError(t, err)

	t.Run("activate from draft is illegal", func(t *testing.T) {
		_, err := svc.ActivateContract(ctx, contract.ID, landlordActor)
		assert.ErrorIs(t, err, ErrBusinessRule)

		stored, err := svc.GetContract(ctx, contract.ID, landlordActor)
		require.NoError(t, err)
		assert.Equal(t, model.ContractStatusDraft, stored.Status)
	})

	t.Run("tenant party can sign", func(t *testing.T) {
		signed, err := svc.SignContract(ctx, contract.ID, tenantActor)
		require.NoError(t, err)
		assert.Equal(t, model.ContractStatusPending, signed.Status)
	})

	t.Run("tenant cannot activate", func(t *testing.T) {
		_, err := svc.ActivateContract(ctx, contract.ID, tenantActor)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("activation rents the property", func(t *testing.T) {
		activated, err := svc.ActivateContract(ctx, contract.ID, landlordActor)
		require.NoError(t, err)
		assert.Equal(t, model.ContractStatusActive, activated.Status)
		assert.Equal(t, model.PropertyStatusRented, store.properties[100].Status)
	})

	t.Run("termination releases the property and records the reason", func(t *testing.T) {
		terminated, err := svc.TerminateContract(ctx, contract.ID, "tenant relocated", tenantActor)
		require.NoError(t, err)
		assert.Equal(t, model.ContractStatusTerminated, terminated.Status)
		assert.Equal(t, model.PropertyStatusAvailable, store.properties[100].Status)
		assert.Contains(t, terminated.Notes, "tenant relocated")
	})

	t.Run("terminating twice is rejected", func(t *testing.T) {
		_, err := svc.TerminateContract(ctx, contract.ID, "again", tenantActor)
		assert.ErrorIs(t, err, ErrBusinessRule)
	})
}

func TestTerminateDraftDoesNotTouchProperty(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedParties(store)
	svc := newTestService(store)

	contract, err := svc.CreateContract(ctx, validInput(), landlordActor)
	require.NoError(t, err)

	store.properties[100].Status = model.PropertyStatusMaintenance
	_, err = svc.TerminateContract(ctx, contract.ID, "changed plans", landlordActor)
	require.NoError(t, err)
	assert.Equal(t, model.PropertyStatusMaintenance, store.properties[100].Status)
}

func TestMarkBreached(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedParties(store)
	svc := newTestService(store)

	contract, err := svc.CreateContract(ctx, validInput(), landlordActor)
	require.NoError(t, err)

	_, err = svc.MarkBreached(ctx, contract.ID, "unpaid rent", landlordActor)
	assert.ErrorIs(t, err, ErrBusinessRule)

	_, err = svc.SignContract(ctx, contract.ID, landlordActor)
	require.NoError(t, err)
	_, err = svc.ActivateContract(ctx, contract.ID, landlordActor)
	require.NoError(t, err)

	_, err = svc.MarkBreached(ctx, contract.ID, "unpaid rent", tenantActor)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	breached, err := svc.MarkBreached(ctx, contract.ID, "unpaid rent", landlordActor)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusBreached, breached.Status)
	assert.Contains(t, breached.Notes, "unpaid rent")

	// Breach keeps the property rented until termination.
	assert.Equal(t, model.PropertyStatusRented, store.properties[100].Status)

	terminated, err := svc.TerminateContract(ctx, contract.ID, "evicted", landlordActor)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusTerminated, terminated.Status)
}

func TestUpdateContract(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ContractService, *fakeStore, *model.Contract) {
		store := newFakeStore()
		seedParties(store)
		svc := newTestService(store)
		contract, err := svc.CreateContract(ctx, validInput(), landlordActor)
		require.NoError(t, err)
		return svc, store, contract
	}

	t.Run("landlord updates rent in draft", func(t *testing.T) {
		svc, _, contract := setup(t)
		rent := int64(380000)
		updated, err := svc.UpdateContract(ctx, contract.ID, UpdateContractInput{MonthlyRent: &rent}, landlordActor)
		require.NoError(t, err)
		assert.Equal(t, rent, updated.MonthlyRent)
	})

	t.Run("tenant cannot update", func(t *testing.T) {
		svc, _, contract := setup(t)
		rent := int64(1)
		_, err := svc.UpdateContract(ctx, contract.ID, UpdateContractInput{MonthlyRent: &rent}, tenantActor)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("active contract cannot be modified", func(t *testing.T) {
		svc, _, contract := setup(t)
		_, err := svc.SignContract(ctx, contract.ID, landlordActor)
		require.NoError(t, err)
		_, err = svc.ActivateContract(ctx, contract.ID, landlordActor)
		require.NoError(t, err)

		rent := int64(380000)
		_, err = svc.UpdateContract(ctx, contract.ID, UpdateContractInput{MonthlyRent: &rent}, landlordActor)
		assert.ErrorIs(t, err, ErrBusinessRule)
	})

	t.Run("date change re-runs the availability guard excluding self", func(t *testing.T) {
		svc, _, contract := setup(t)
		_, err := svc.SignContract(ctx, contract.ID, landlordActor)
		require.NoError(t, err)

		// Shifting its own window is fine even though it overlaps itself.
		effective := date(2024, 2, 1)
		expiry := date(2025, 1, 31)
		_, err = svc.UpdateContract(ctx, contract.ID, UpdateContractInput{
			EffectiveDate: &effective,
			ExpiryDate:    &expiry,
		}, landlordActor)
		assert.NoError(t, err)
	})

	t.Run("date change conflicting with another pending contract", func(t *testing.T) {
		svc, store, contract := setup(t)
		_, err := svc.SignContract(ctx, contract.ID, landlordActor)
		require.NoError(t, err)

		store.addProperty(model.Property{ID: 103, LandlordID: 10, Status: model.PropertyStatusAvailable})
		input := validInput()
		input.PropertyID = 103
		input.TenantID = 30
		input.EffectiveDate = date(2025, 1, 1)
		input.ExpiryDate = date(2025, 12, 31)
		other, err := svc.CreateContract(ctx, input, landlordActor)
		require.NoError(t, err)
		_, err = svc.SignContract(ctx, other.ID, landlordActor)
		require.NoError(t, err)

		newPropertyID := uint(103)
		effective := date(2025, 6, 1)
		expiry := date(2026, 5, 31)
		_, err = svc.UpdateContract(ctx, contract.ID, UpdateContractInput{
			PropertyID:    &newPropertyID,
			EffectiveDate: &effective,
			ExpiryDate:    &expiry,
		}, landlordActor)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("invalid duration after patch rejected", func(t *testing.T) {
		svc, _, contract := setup(t)
		months := 60
		_, err := svc.UpdateContract(ctx, contract.ID, UpdateContractInput{LeaseDuration: &months}, landlordActor)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestDeleteContract(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedParties(store)
	svc := newTestService(store)

	contract, err := svc.CreateContract(ctx, validInput(), landlordActor)
	require.NoError(t, err)

	err = svc.DeleteContract(ctx, contract.ID, tenantActor)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.SignContract(ctx, contract.ID, landlordActor)
	require.NoError(t, err)
	err = svc.DeleteContract(ctx, contract.ID, landlordActor)
	assert.ErrorIs(t, err, ErrBusinessRule)

	store2 := newFakeStore()
	seedParties(store2)
	svc2 := newTestService(store2)
	draft, err := svc2.CreateContract(ctx, validInput(), landlordActor)
	require.NoError(t, err)
	require.NoError(t, svc2.DeleteContract(ctx, draft.ID, landlordActor))
	_, err = svc2.GetContract(ctx, draft.ID, landlordActor)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetContractAccess(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedParties(store)
	svc := newTestService(store)

	contract, err := svc.CreateContract(ctx, validInput(), landlordActor)
	require.NoError(t, err)

	for _, actor := range []model.Principal{adminActor, landlordActor, tenantActor} {
		_, err := svc.GetContract(ctx, contract.ID, actor)
		assert.NoError(t, err)
	}

	_, err = svc.GetContract(ctx, contract.ID, strangerActor)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestListContractsScoping(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedParties(store)
	store.addProperty(model.Property{ID: 103, LandlordID: 10, Status: model.PropertyStatusAvailable})
	svc := newTestService(store)

	_, err := svc.CreateContract(ctx, validInput(), landlordActor)
	require.NoError(t, err)

	input := validInput()
	input.PropertyID = 103
	input.TenantID = 30
	_, err = svc.CreateContract(ctx, input, landlordActor)
	require.NoError(t, err)

	adminPage, err := svc.ListContracts(ctx, ListContractsInput{}, adminActor)
	require.NoError(t, err)
	assert.EqualValues(t, 2, adminPage.Total)

	tenantPage, err := svc.ListContracts(ctx, ListContractsInput{}, tenantActor)
	require.NoError(t, err)
	assert.EqualValues(t, 1, tenantPage.Total)
	assert.Equal(t, uint(20), tenantPage.Items[0].TenantID)

	// Requested filters cannot widen a non-admin scope.
	otherPage, err := svc.ListContracts(ctx, ListContractsInput{PropertyID: 103}, tenantActor)
	require.NoError(t, err)
	assert.EqualValues(t, 0, otherPage.Total)

	_, err = svc.ListContracts(ctx, ListContractsInput{Status: "bogus"}, adminActor)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExpiringContractsAndStatistics(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedParties(store)
	store.addProperty(model.Property{ID: 103, LandlordID: 10, Status: model.PropertyStatusAvailable})
	svc := newTestService(store)

	now := time.Now()

	// Active contract expiring in 10 days.
	soon := validInput()
	soon.SignedDate = now.AddDate(-1, 0, 0)
	soon.EffectiveDate = now.AddDate(0, -11, 0).AddDate(0, 0, -20)
	soon.ExpiryDate = now.AddDate(0, 0, 10)
	soon.LeaseDuration = 12
	first, err := svc.CreateContract(ctx, soon, landlordActor)
	require.NoError(t, err)
	_, err = svc.SignContract(ctx, first.ID, landlordActor)
	require.NoError(t, err)
	_, err = svc.ActivateContract(ctx, first.ID, landlordActor)
	require.NoError(t, err)

	// Draft contract far in the future on another property.
	later := validInput()
	later.PropertyID = 103
	later.TenantID = 30
	later.SignedDate = now
	later.EffectiveDate = now.AddDate(0, 1, 0)
	later.ExpiryDate = now.AddDate(1, 1, 0)
	later.LeaseDuration = 12
	_, err = svc.CreateContract(ctx, later, landlordActor)
	require.NoError(t, err)

	expiring, err := svc.ExpiringContracts(ctx, 30, landlordActor)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, first.ID, expiring[0].ID)

	// Stranger tenant sees nothing.
	expiring, err = svc.ExpiringContracts(ctx, 30, strangerActor)
	require.NoError(t, err)
	assert.Empty(t, expiring)

	stats, err := svc.Statistics(ctx, adminActor)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Active)
	assert.EqualValues(t, 1, stats.Draft)
	assert.EqualValues(t, 1, stats.ExpiringSoon)

	tenantStats, err := svc.Statistics(ctx, tenantActor)
	require.NoError(t, err)
	assert.EqualValues(t, 1, tenantStats.Total)
}

func TestExportContracts(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedParties(store)
	excelStub := &stubExcel{}
	cfg := &config.Config{Contracts: config.ContractsConfig{ExpiringDays: 30}}
	svc := NewContractService(store, excelStub, &stubPDF{}, cfg)

	_, err := svc.CreateContract(ctx, validInput(), landlordActor)
	require.NoError(t, err)

	result, err := svc.ExportContracts(ctx, landlordActor)
	require.NoError(t, err)
	assert.Contains(t, result.FileName, "user-10")
	require.Len(t, excelStub.lastRegister.Sections, 1)
	assert.Equal(t, model.ContractStatusDraft, excelStub.lastRegister.Sections[0].Status)
	assert.EqualValues(t, 1, excelStub.lastRegister.Total)
}

func TestContractDocument(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedParties(store)
	pdfStub := &stubPDF{}
	cfg := &config.Config{Contracts: config.ContractsConfig{ExpiringDays: 30}}
	svc := NewContractService(store, &stubExcel{}, pdfStub, cfg)

	contract, err := svc.CreateContract(ctx, validInput(), landlordActor)
	require.NoError(t, err)

	result, err := svc.ContractDocument(ctx, contract.ID, tenantActor)
	require.NoError(t, err)
	assert.Equal(t, "contract-"+contract.ContractNumber+".pdf", result.FileName)
	assert.Equal(t, contract.ContractNumber, pdfStub.lastDoc.Contract.ContractNumber)
	assert.Equal(t, "Tenant Wang", pdfStub.lastDoc.Tenant.Name)

	_, err = svc.ContractDocument(ctx, contract.ID, strangerActor)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
