package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"yideng/config"
	"yideng/database"
	"yideng/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		DeployerAddress:    "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
		TokenAddress:       "0x5fbdb2315678afecb367f032d93f642f64180aa3",
		CertificateAddress: "0xe7f1725e7734ce288f8367e1bb143e90bb3f0512",
		MarketAddress:      "0x9fe46736679d2d9a65f0992f2272de9f3c7fa6e0",
		TokensPerUnit:      1000,
		MaxSupply:          1250000,
		MetadataBaseURL:    "https://api.yideng.com/certificate",
	}
}

func newTestLedger(t *testing.T, cfg *config.Config) *ledger.Ledger {
	t.Helper()

	db, err := database.OpenMemory()
	require.NoError(t, err)

	l, err := NewLedger(context.Background(), db, cfg)
	require.NoError(t, err)
	return l
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCourseSeed(t *testing.T) {
	path := writeFile(t, "courses.yaml", `
courses:
  - web2CourseId: COURSE-001
    name: Web3 Dev
    price: 100
  - web2CourseId: COURSE-002
    name: Smart Contracts 101
    price: 0
`)

	seed, err := LoadCourseSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Courses, 2)
	assert.Equal(t, SeedCourse{ID: "COURSE-001", Name: "Web3 Dev", Price: 100}, seed.Courses[0])
	assert.Equal(t, uint64(0), seed.Courses[1].Price)

	_, err = LoadCourseSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadCourseSeed(writeFile(t, "bad.yaml", "courses: [price: -1"))
	assert.Error(t, err)
}

func TestSeedCoursesIsRepeatable(t *testing.T) {
	l := newTestLedger(t, testConfig())
	ctx := context.Background()

	seed := &CourseSeed{Courses: []SeedCourse{
		{ID: "COURSE-001", Name: "Web3 Dev", Price: 100},
		{ID: "COURSE-002", Name: "Smart Contracts 101", Price: 0},
	}}

	added, err := SeedCourses(ctx, l, l.Deployer(), seed)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = SeedCourses(ctx, l, l.Deployer(), seed)
	require.NoError(t, err)
	assert.Equal(t, 0, added, "existing courses are skipped")

	c, err := l.Market.CourseByExternalID(ctx, "COURSE-001")
	require.NoError(t, err)
	assert.Equal(t, "Web3 Dev", c.Name)
	assert.Equal(t, l.Deployer().String(), c.Creator)
}

func TestSeedCoursesStopsOnInvalidEntry(t *testing.T) {
	l := newTestLedger(t, testConfig())

	seed := &CourseSeed{Courses: []SeedCourse{
		{ID: "COURSE-001", Name: "Web3 Dev", Price: 100},
		{ID: "COURSE-002", Name: "", Price: 10},
		{ID: "COURSE-003", Name: "Never Reached", Price: 10},
	}}

	added, err := SeedCourses(context.Background(), l, l.Deployer(), seed)
	require.ErrorIs(t, err, ledger.ErrInvalidCourse)
	assert.Equal(t, 1, added)

	_, err = l.Market.CourseByExternalID(context.Background(), "COURSE-003")
	assert.ErrorIs(t, err, ledger.ErrCourseNotFound)
}
