package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

var userCols = []string{
	"id", "telegram_id", "username", "first_name", "last_name",
	"role", "organization_id", "created_at", "updated_at",
}

func userFixtureRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows(userCols)
	for _, id := range ids {
		rows.AddRow(id, int64(100200300), "alice", "Alice", "Ivanova", "buyer", "org-1", time.Now(), time.Now())
	}
	return rows
}

func userRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), mock
}

func TestUserGetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := userRepoWithMock(t)
		mock.ExpectQuery("SELECT.*FROM users.*WHERE id").
			WithArgs("user-1").
			WillReturnRows(userFixtureRows("user-1"))

		user, err := repo.GetByID(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if user == nil {
			t.Fatal("want user, got nil")
		}
		if user.Username != "alice" {
			t.Errorf("Username = %q, want alice", user.Username)
		}
		if !user.IsBuyer() {
			t.Errorf("role %q does not satisfy IsBuyer", user.Role)
		}
	})

	t.Run("missing maps to nil without error", func(t *testing.T) {
		repo, mock := userRepoWithMock(t)
		mock.ExpectQuery("SELECT.*FROM users.*WHERE id").
			WillReturnRows(userFixtureRows())

		user, err := repo.GetByID(context.Background(), "user-ghost")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if user != nil {
			t.Errorf("want nil for missing user, got %+v", user)
		}
	})

	t.Run("query failure surfaces", func(t *testing.T) {
		repo, mock := userRepoWithMock(t)
		mock.ExpectQuery("SELECT.*FROM users.*WHERE id").WillReturnError(errDB)

		if _, err := repo.GetByID(context.Background(), "user-1"); err == nil {
			t.Fatal("want error from failed query")
		}
	})
}

func TestUserGetByTelegramID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := userRepoWithMock(t)
		mock.ExpectQuery("SELECT.*FROM users.*WHERE telegram_id").
			WithArgs(int64(100200300)).
			WillReturnRows(userFixtureRows("user-1"))

		user, err := repo.GetByTelegramID(context.Background(), 100200300)
		if err != nil {
			t.Fatalf("GetByTelegramID: %v", err)
		}
		if user == nil {
			t.Fatal("want user, got nil")
		}
		if user.TelegramID == nil || *user.TelegramID != 100200300 {
			t.Errorf("TelegramID = %v, want 100200300", user.TelegramID)
		}
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := userRepoWithMock(t)
		mock.ExpectQuery("SELECT.*FROM users.*WHERE telegram_id").
			WillReturnRows(userFixtureRows())

		user, err := repo.GetByTelegramID(context.Background(), 42)
		if err != nil {
			t.Fatalf("GetByTelegramID: %v", err)
		}
		if user != nil {
			t.Errorf("want nil for unknown telegram id, got %+v", user)
		}
	})
}

func TestUserUpsertTelegram(t *testing.T) {
	t.Run("first login creates user without membership", func(t *testing.T) {
		repo, mock := userRepoWithMock(t)
		mock.ExpectQuery("INSERT INTO users.*ON CONFLICT").
			WithArgs(int64(100200300), "alice", "Alice", "Ivanova").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("user-1", int64(100200300), "alice", "Alice", "Ivanova", "", nil, time.Now(), time.Now()))

		user, err := repo.UpsertTelegram(context.Background(), 100200300, "alice", "Alice", "Ivanova")
		if err != nil {
			t.Fatalf("UpsertTelegram: %v", err)
		}
		if user.ID != "user-1" {
			t.Errorf("ID = %q, want user-1", user.ID)
		}
		if user.OrganizationID != nil {
			t.Errorf("fresh user should have no organization, got %v", *user.OrganizationID)
		}
	})

	t.Run("insert failure surfaces", func(t *testing.T) {
		repo, mock := userRepoWithMock(t)
		mock.ExpectQuery("INSERT INTO users.*ON CONFLICT").WillReturnError(errDB)

		if _, err := repo.UpsertTelegram(context.Background(), 42, "bob", "Bob", ""); err == nil {
			t.Fatal("want error from failed upsert")
		}
	})
}

func TestUserSetMembership(t *testing.T) {
	repo, mock := userRepoWithMock(t)
	mock.ExpectExec("UPDATE users.*SET organization_id").
		WithArgs("user-1", "org-1", "employee").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetMembership(context.Background(), "user-1", "org-1", "employee"); err != nil {
		t.Fatalf("SetMembership: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserListing(t *testing.T) {
	t.Run("by organization", func(t *testing.T) {
		repo, mock := userRepoWithMock(t)
		mock.ExpectQuery("SELECT.*FROM users.*WHERE organization_id").
			WithArgs("org-1").
			WillReturnRows(userFixtureRows("user-1", "user-2"))

		users, err := repo.ListByOrganization(context.Background(), "org-1")
		if err != nil {
			t.Fatalf("ListByOrganization: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("len(users) = %d, want 2", len(users))
		}
	})

	t.Run("paginated list", func(t *testing.T) {
		repo, mock := userRepoWithMock(t)
		mock.ExpectQuery("SELECT.*FROM users.*ORDER BY.*LIMIT").
			WithArgs(20, 0).
			WillReturnRows(userFixtureRows("user-1"))

		users, err := repo.List(context.Background(), 20, 0)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("len(users) = %d, want 1", len(users))
		}
	})

	t.Run("count", func(t *testing.T) {
		repo, mock := userRepoWithMock(t)
		mock.ExpectQuery("SELECT COUNT.*FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		n, err := repo.Count(context.Background())
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n != 5 {
			t.Errorf("count = %d, want 5", n)
		}
	})
}
