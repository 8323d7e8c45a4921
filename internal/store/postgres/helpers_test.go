package postgres_test

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var tenantCols = []string{
	"id", "name", "domain", "brand_name", "primary_color", "secondary_color",
	"primary_color_dark", "secondary_color_dark", "logo_url", "favicon_url", "footer_text",
	"social_links", "features", "smtp_host", "smtp_port", "smtp_user", "smtp_password",
	"smtp_use_tls", "smtp_from_address", "smtp_from_name", "is_active", "created_at", "updated_at",
}

func tenantRow(id uuid.UUID, name string, domain any, created time.Time) []driver.Value {
	return []driver.Value{
		id.String(), name, domain, name, "#44B78B", "#2D3748",
		"", "", "", "", "",
		[]byte(`{"x":"https://x.com/acme"}`), []byte(`{"beta":true}`), "", int64(587), "", "",
		true, "", "", true, created, created,
	}
}

var moduleCols = []string{
	"id", "slug", "name", "display_name", "description", "is_active", "is_system_module", "config", "created_at", "updated_at",
}
