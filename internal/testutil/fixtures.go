package testutil

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"me-platform/internal/models"
	"me-platform/internal/service"
)

// Taxonomy ids of SampleTaxonomy
const (
	OrgFinance int64 = 1
	OrgHealth  int64 = 2

	FocusFinanceRevenue  int64 = 10
	FocusFinanceSpending int64 = 11
	FocusHealthCare      int64 = 20

	ProgrammeRevenue  int64 = 1000
	ProgrammeSpending int64 = 1100
	ProgrammeHealth   int64 = 2000

	StrategyTaxBase    int64 = 100
	StrategyCompliance int64 = 101
	StrategyClinics    int64 = 200
)

// Password is the plain text password of every fixture user
const Password = "correct-horse-battery"

// Fixtures holds test data
type Fixtures struct {
	Taxonomy *models.Taxonomy

	Admin            *models.User
	Reviewer         *models.User
	FinanceOfficer   *models.User
	FinanceColleague *models.User
	HealthOfficer    *models.User
	InactiveOfficer  *models.User
}

// SampleTaxonomy returns two organisations with a small classification tree each
func SampleTaxonomy() *models.Taxonomy {
	return &models.Taxonomy{
		Organisations: []models.Organisation{
			{ID: OrgFinance, Name: "Ministry of Finance", Code: "MOF"},
			{ID: OrgHealth, Name: "Ministry of Health", Code: "MOH"},
		},
		Pillars: []models.Pillar{
			{ID: 1, Name: "Economic Transformation"},
			{ID: 2, Name: "Social Development"},
		},
		Themes: []models.Theme{
			{ID: 1, PillarID: 1, Name: "Public Finance"},
			{ID: 2, PillarID: 2, Name: "Health"},
		},
		FocusAreas: []models.FocusArea{
			{ID: FocusFinanceRevenue, ThemeID: 1, OrganisationID: OrgFinance, Name: "Domestic Revenue", StrategyIDs: []int64{StrategyTaxBase, StrategyCompliance}},
			{ID: FocusFinanceSpending, ThemeID: 1, OrganisationID: OrgFinance, Name: "Public Spending", StrategyIDs: []int64{}},
			{ID: FocusHealthCare, ThemeID: 2, OrganisationID: OrgHealth, Name: "Primary Care", StrategyIDs: []int64{StrategyClinics}},
		},
		Programmes: []models.Programme{
			{ID: ProgrammeRevenue, FocusAreaID: FocusFinanceRevenue, Name: "Revenue Mobilisation"},
			{ID: ProgrammeSpending, FocusAreaID: FocusFinanceSpending, Name: "Expenditure Control"},
			{ID: ProgrammeHealth, FocusAreaID: FocusHealthCare, Name: "Community Health"},
		},
		Strategies: []models.Strategy{
			{ID: StrategyTaxBase, ProgrammeID: ProgrammeRevenue, Name: "Broaden the tax base"},
			{ID: StrategyCompliance, ProgrammeID: ProgrammeRevenue, Name: "Improve compliance"},
			{ID: StrategyClinics, ProgrammeID: ProgrammeHealth, Name: "Expand rural clinics"},
		},
	}
}

// SetupFixtures seeds SampleTaxonomy and one user per role into the stores
func SetupFixtures(t *testing.T, taxonomy service.TaxonomyStore, users service.UserStore) *Fixtures {
	t.Helper()
	ctx := context.Background()

	f := &Fixtures{Taxonomy: SampleTaxonomy()}
	if err := taxonomy.Upsert(ctx, f.Taxonomy); err != nil {
		t.Fatalf("Failed to seed taxonomy: %v", err)
	}

	finance, health := OrgFinance, OrgHealth
	f.Admin = createUser(t, users, "admin", "Ada Admin", models.RoleAdmin, nil, true)
	f.Reviewer = createUser(t, users, "reviewer", "Rita Reviewer", models.RoleNPC, nil, true)
	f.FinanceOfficer = createUser(t, users, "finance.officer", "Fiona Finance", models.RoleOMA, &finance, true)
	f.FinanceColleague = createUser(t, users, "finance.colleague", "Felix Finance", models.RoleOMA, &finance, true)
	f.HealthOfficer = createUser(t, users, "health.officer", "Hana Health", models.RoleOMA, &health, true)
	f.InactiveOfficer = createUser(t, users, "inactive.officer", "Ivan Inactive", models.RoleOMA, &finance, false)

	return f
}

// createUser stores a user with a cheap bcrypt hash of Password
func createUser(t *testing.T, users service.UserStore, username, fullName string, role models.RoleID, orgID *int64, active bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	email := username + "@example.org"
	user := &models.User{
		FullName:       fullName,
		Username:       username,
		Email:          &email,
		PasswordHash:   string(hash),
		RoleID:         role,
		OrganisationID: orgID,
		IsActive:       active,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// PrincipalOf returns the request identity of user
func PrincipalOf(user *models.User) models.Principal {
	return models.Principal{UserID: user.ID, Role: user.RoleID, OrganisationID: user.OrganisationID}
}
