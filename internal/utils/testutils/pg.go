package testutils

import (
	"context"
	"fmt"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testContainerDatabase = "seedmask"
	testContainerUser     = "seedmask"
	testContainerPassword = "seedmask_pass"
)

const (
	pgTestContainerPort        nat.Port = "5432"
	pgTestContainerImage                = "postgres:17"
	pgTestContainerExposedPort          = "5432/tcp"
)

// PgContainerSuite runs each embedding suite against a disposable
// PostgreSQL container. Set MigrationUp/MigrationDown before SetupSuite
// runs to seed the database.
type PgContainerSuite struct {
	suite.Suite
	Container     testcontainers.Container
	MigrationUp   string
	MigrationDown string
}

func (s *PgContainerSuite) SetupSuite() {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        pgTestContainerImage,
		ExposedPorts: []string{pgTestContainerExposedPort},
		Env: map[string]string{
			"POSTGRES_USER":     testContainerUser,
			"POSTGRES_PASSWORD": testContainerPassword,
			"POSTGRES_DB":       testContainerDatabase,
		},
		WaitingFor: wait.ForSQL(pgTestContainerExposedPort, "pgx", func(host string, port nat.Port) string {
			return buildDSN(host, port.Port(), testContainerUser, testContainerPassword)
		}),
	}

	var err error
	s.Container, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoErrorf(err, "failed to start PostgreSQL Container")

	s.MigrateUp(ctx)
}

func (s *PgContainerSuite) TearDownSuite() {
	ctx := context.Background()
	s.MigrateDown(ctx)
	err := s.Container.Terminate(ctx)
	s.Assert().NoErrorf(err, "failed to terminate PostgreSQL Container")
}

func (s *PgContainerSuite) SetMigrationUp(sql string) *PgContainerSuite {
	s.MigrationUp = sql
	return s
}

func (s *PgContainerSuite) SetMigrationDown(sql string) *PgContainerSuite {
	s.MigrationDown = sql
	return s
}

// HostPort returns the address the mapped container port is reachable at,
// for tools that take host and port separately (pg_dump, psql).
func (s *PgContainerSuite) HostPort(ctx context.Context) (string, string) {
	host, err := s.Container.Host(ctx)
	s.Require().NoErrorf(err, "failed to get Container host")
	port, err := s.Container.MappedPort(ctx, pgTestContainerPort)
	s.Require().NoErrorf(err, "failed to get Container port")
	return host, port.Port()
}

// ConnectionString returns a DSN for the container database under the
// default test user.
func (s *PgContainerSuite) ConnectionString(ctx context.Context) string {
	host, port := s.HostPort(ctx)
	return buildDSN(host, port, testContainerUser, testContainerPassword)
}

func (s *PgContainerSuite) GetConnection(ctx context.Context) (*pgx.Conn, error) {
	return s.GetConnectionWithUser(ctx, testContainerUser, testContainerPassword)
}

func (s *PgContainerSuite) GetConnectionWithUser(ctx context.Context, username, password string) (*pgx.Conn, error) {
	host, port := s.HostPort(ctx)
	return pgx.Connect(ctx, buildDSN(host, port, username, password))
}

func (s *PgContainerSuite) GetSuperUser() string {
	return testContainerUser
}

func (s *PgContainerSuite) GetDatabase() string {
	return testContainerDatabase
}

func (s *PgContainerSuite) GetPassword() string {
	return testContainerPassword
}

func (s *PgContainerSuite) MigrateUp(ctx context.Context) {
	if s.MigrationUp == "" {
		return
	}
	conn, err := s.GetConnection(ctx)
	s.Require().NoErrorf(err, "failed to connect to PostgreSQL")
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, s.MigrationUp)
	s.Require().NoErrorf(err, "failed to run up migration")
}

func (s *PgContainerSuite) MigrateDown(ctx context.Context) {
	if s.MigrationDown == "" {
		return
	}
	conn, err := s.GetConnection(ctx)
	s.Require().NoErrorf(err, "failed to connect to PostgreSQL")
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, s.MigrationDown)
	s.Require().NoErrorf(err, "failed to run down migration")
}

func buildDSN(host, port, username, password string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		username, password, host, port, testContainerDatabase,
	)
}
