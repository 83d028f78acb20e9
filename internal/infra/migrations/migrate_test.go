package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Записи хранятся вечно (soft cancel), поэтому appointments не должна
// ссылаться на services внешним ключом: иначе услугу, у которой когда-либо
// была запись, нельзя удалить из каталога даже после отмены всех её записей.
// Данные услуги денормализованы в строку записи, ссылка не обязана жить
func TestSchema_AppointmentsDoNotReferenceServices(t *testing.T) {
	content, err := embedMigrations.ReadFile("sql/00001_init.sql")
	require.NoError(t, err)

	schema := strings.ToUpper(string(content))

	start := strings.Index(schema, "CREATE TABLE APPOINTMENTS")
	require.NotEqual(t, -1, start)

	appointmentsDDL := schema[start:]
	if end := strings.Index(appointmentsDDL, ";"); end != -1 {
		appointmentsDDL = appointmentsDDL[:end]
	}

	assert.NotContains(t, appointmentsDDL, "REFERENCES")
	assert.NotContains(t, appointmentsDDL, "FOREIGN KEY")

	// Денормализация, ради которой ссылка не нужна
	assert.Contains(t, appointmentsDDL, "SERVICE_NAME")
	assert.Contains(t, appointmentsDDL, "SERVICE_PRICE")
}
