package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "native dsn untouched",
			in:   "app:secret@tcp(db:3306)/users?parseTime=true",
			want: "app:secret@tcp(db:3306)/users?parseTime=true",
		},
		{
			name: "url with defaults",
			in:   "mysql://app:secret@db:3306/users",
			want: "app:secret@tcp(db:3306)/users?charset=utf8mb4&parseTime=true",
		},
		{
			name: "jdbc params and overrides",
			in:   "jdbc:mysql://db:3306/users?useSSL=false&characterEncoding=utf8&useUnicode=true",
			user: "root",
			pass: "pw",
			want: "root:pw@tcp(db:3306)/users?charset=utf8&parseTime=true&tls=false",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeMySQLDSN(tt.in, tt.user, tt.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "app:****@tcp(db:3306)/users", maskDSN("app:secret@tcp(db:3306)/users"))
	assert.Equal(t, "tcp(db:3306)/users", maskDSN("tcp(db:3306)/users"))
}

func TestNewGorm_Sqlite(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file:newgorm?mode=memory&cache=shared", MaxOpenConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	defer Close(db)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestNewGorm_SqliteKeepsSchemaBetweenQueries(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file:newgorm_schema?mode=memory&cache=shared", MaxOpenConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	defer Close(db)

	type item struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&item{}))
	require.NoError(t, db.Create(&item{Name: "a"}).Error)

	var n int64
	require.NoError(t, db.Model(&item{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
