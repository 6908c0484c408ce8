package cursorpage

import (
	"database/sql"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Shared test plumbing: a GORM handle over a sqlmock connection, once per
// supported dialect so SQL expectations cover both quoting styles.

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	return openMockedGORM("mysql", func(conn *sql.DB) gorm.Dialector {
		return mysql.New(mysql.Config{Conn: conn, SkipInitializeWithVersion: true})
	})
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	return openMockedGORM("postgres", func(conn *sql.DB) gorm.Dialector {
		return postgres.New(postgres.Config{Conn: conn})
	})
}

func openMockedGORM(dialect string, dialector func(*sql.DB) gorm.Dialector) (string, *gorm.DB, sqlmock.Sqlmock, error) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	db, err := gorm.Open(dialector(conn), &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return dialect, db.Debug(), mock, nil
}
