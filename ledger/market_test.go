package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"yideng/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// enroll funds holder, approves the marketplace and buys the course.
func enroll(t *testing.T, l *Ledger, holder Address, externalID string) {
	t.Helper()
	ctx := context.Background()
	fund(t, l, holder, 1)
	require.NoError(t, l.Token.Approve(ctx, holder, mktAddr, 1000))
	_, err := l.Market.PurchaseCourse(ctx, holder, externalID)
	require.NoError(t, err)
}

func addCourse(t *testing.T, l *Ledger, externalID string, price uint64) *course.Course {
	t.Helper()
	c, err := l.Market.AddCourse(context.Background(), deployer, externalID, "Web3 Dev", price)
	require.NoError(t, err)
	return c
}

func TestCoursePurchaseToCertificate(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	rec := record(l)

	c, err := l.Market.AddCourse(ctx, deployer, "COURSE-001", "Web3 Dev", 100)
	require.NoError(t, err)
	assert.Equal(t, uint(1), c.ID)
	assert.Equal(t, string(deployer), c.Creator)
	assert.True(t, c.IsActive)

	fund(t, l, alice, 1)
	require.NoError(t, l.Token.Approve(ctx, alice, mktAddr, 100))

	p, err := l.Market.PurchaseCourse(ctx, alice, "COURSE-001")
	require.NoError(t, err)
	assert.Equal(t, course.PurchaseStatusPurchased, p.Status)
	assert.Equal(t, uint64(100), p.PricePaid)

	has, err := l.Market.HasCourse(ctx, alice, "COURSE-001")
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, uint64(900), balance(t, l, alice))
	assert.Equal(t, uint64(100), balance(t, l, deployer))

	id, err := l.Market.VerifyCompletion(ctx, deployer, alice, "COURSE-001")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	ids, err := l.Certificates.CertificatesFor(ctx, alice, "COURSE-001")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)

	uri, err := l.Certificates.MetadataOf(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://api.yideng.com/certificate/COURSE-001/"+string(alice), uri)

	cert, err := l.Certificates.Certificate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(mktAddr), cert.MintedBy)

	p, err = l.Market.Purchase(ctx, alice, "COURSE-001")
	require.NoError(t, err)
	assert.Equal(t, course.PurchaseStatusCompleted, p.Status)
	assert.Equal(t, 1, p.Completions)
	assert.NotNil(t, p.CompletedAt)

	names := rec.names()
	assert.Contains(t, names, EventCourseAdded)
	assert.Contains(t, names, EventCoursePurchased)
	assert.Equal(t, []string{EventTransfer, EventCertificateMinted, EventCourseCompleted}, names[len(names)-3:])

	completed, _, err := l.Events.List(ctx, EventFilter{Name: EventCourseCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.JSONEq(t,
		`{"student":"0x70997970c51812dc3a010c7d01b50e0d17dc79c8","web2CourseId":"COURSE-001","certificateId":1}`,
		string(completed[0].Payload))
}

func TestAddCourseRules(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Market.AddCourse(ctx, alice, "COURSE-001", "Web3 Dev", 100)
	assert.ErrorIs(t, err, ErrUnauthorized)

	addCourse(t, l, "COURSE-001", 100)

	_, err = l.Market.AddCourse(ctx, deployer, "COURSE-001", "Another", 5)
	assert.ErrorIs(t, err, ErrCourseExists)

	_, err = l.Market.AddCourse(ctx, deployer, "", "Nameless", 5)
	assert.ErrorIs(t, err, ErrInvalidCourse)

	second := addCourse(t, l, "COURSE-002", 0)
	assert.Equal(t, uint(2), second.ID)

	courses, total, err := l.Market.Courses(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Web3 Dev", courses[0].Name)
	assert.Equal(t, uint64(100), courses[0].Price)

	byID, err := l.Market.Course(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "COURSE-002", byID.ExternalID)

	_, err = l.Market.Course(ctx, 3)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseFieldLengthsAreChecked(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Market.AddCourse(ctx, deployer, strings.Repeat("C", 101), "Web3 Dev", 100)
	assert.ErrorIs(t, err, ErrInvalidCourse)

	_, err = l.Market.AddCourse(ctx, deployer, "COURSE-001", strings.Repeat("n", 256), 100)
	assert.ErrorIs(t, err, ErrInvalidCourse)

	c, err := l.Market.AddCourse(ctx, deployer, strings.Repeat("C", 100), strings.Repeat("n", 255), 100)
	require.NoError(t, err)
	assert.Equal(t, uint(1), c.ID)
}

func TestCourseLookupsTrimExternalID(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	addCourse(t, l, " COURSE-001 ", 100)
	enroll(t, l, alice, "COURSE-001")

	has, err := l.Market.HasCourse(ctx, alice, " COURSE-001")
	require.NoError(t, err)
	assert.True(t, has)

	p, err := l.Market.Purchase(ctx, alice, "COURSE-001 ")
	require.NoError(t, err)
	assert.Equal(t, course.PurchaseStatusPurchased, p.Status)

	_, err = l.Market.VerifyCompletion(ctx, deployer, alice, "\tCOURSE-001")
	require.NoError(t, err)

	has, err = l.Certificates.HasCertificate(ctx, alice, " COURSE-001 ")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestPurchaseCourseRules(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	addCourse(t, l, "COURSE-001", 100)

	_, err := l.Market.PurchaseCourse(ctx, alice, "COURSE-404")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	// no allowance yet
	fund(t, l, alice, 1)
	_, err = l.Market.PurchaseCourse(ctx, alice, "COURSE-001")
	assert.ErrorIs(t, err, ErrInsufficientAllow)

	// allowance without the balance
	require.NoError(t, l.Token.Approve(ctx, bob, mktAddr, 100))
	_, err = l.Market.PurchaseCourse(ctx, bob, "COURSE-001")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	require.NoError(t, l.Token.Approve(ctx, alice, mktAddr, 1000))
	_, err = l.Market.PurchaseCourse(ctx, alice, "COURSE-001")
	require.NoError(t, err)

	_, err = l.Market.PurchaseCourse(ctx, alice, "COURSE-001")
	assert.ErrorIs(t, err, ErrAlreadyPurchased)
	assert.Equal(t, uint64(900), balance(t, l, alice))

	_, err = l.Market.PurchaseCourse(ctx, ZeroAddress, "COURSE-001")
	assert.ErrorIs(t, err, ErrInvalidHolder)

	has, err := l.Market.HasCourse(ctx, bob, "COURSE-001")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestFreeCourseNeedsNoTokens(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	addCourse(t, l, "INTRO", 0)

	_, err := l.Market.PurchaseCourse(ctx, carol, "INTRO")
	require.NoError(t, err)

	id, err := l.Market.VerifyCompletion(ctx, deployer, carol, "INTRO")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestVerifyCompletionRules(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	addCourse(t, l, "COURSE-001", 100)
	enroll(t, l, alice, "COURSE-001")

	_, err := l.Market.VerifyCompletion(ctx, deployer, bob, "COURSE-001")
	assert.ErrorIs(t, err, ErrNotPurchased)

	has, err := l.Certificates.HasCertificate(ctx, bob, "COURSE-001")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = l.Market.VerifyCompletion(ctx, mallory, alice, "COURSE-001")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// oracles may verify too
	require.NoError(t, l.Caps.Grant(ctx, deployer, ScopeMarket, RoleOracle, carol))
	_, err = l.Market.VerifyCompletion(ctx, carol, alice, "COURSE-001")
	require.NoError(t, err)
}

func TestVerifyFailsWhenMarketLosesMinter(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	addCourse(t, l, "COURSE-001", 100)
	enroll(t, l, alice, "COURSE-001")

	require.NoError(t, l.Certificates.RevokeMinter(ctx, deployer, mktAddr))
	_, err := l.Market.VerifyCompletion(ctx, deployer, alice, "COURSE-001")
	assert.ErrorIs(t, err, ErrUnauthorized)

	p, err := l.Market.Purchase(ctx, alice, "COURSE-001")
	require.NoError(t, err)
	assert.Equal(t, course.PurchaseStatusPurchased, p.Status)
}

func TestReverificationIsRejectedByDefault(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	addCourse(t, l, "COURSE-001", 100)
	enroll(t, l, alice, "COURSE-001")

	_, err := l.Market.VerifyCompletion(ctx, deployer, alice, "COURSE-001")
	require.NoError(t, err)

	_, err = l.Market.VerifyCompletion(ctx, deployer, alice, "COURSE-001")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	ids, err := l.Certificates.CertificatesFor(ctx, alice, "COURSE-001")
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestReverificationReissuesWhenAllowed(t *testing.T) {
	l := newTestLedger(t, func(o *Options) { o.Market.AllowReissue = true })
	ctx := context.Background()
	addCourse(t, l, "COURSE-001", 100)
	enroll(t, l, alice, "COURSE-001")

	first, err := l.Market.VerifyCompletion(ctx, deployer, alice, "COURSE-001")
	require.NoError(t, err)
	second, err := l.Market.VerifyCompletion(ctx, deployer, alice, "COURSE-001")
	require.NoError(t, err)
	assert.Equal(t, first+1, second)

	ids, err := l.Certificates.CertificatesFor(ctx, alice, "COURSE-001")
	require.NoError(t, err)
	assert.Equal(t, []uint64{first, second}, ids)

	p, err := l.Market.Purchase(ctx, alice, "COURSE-001")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Completions)
}

func TestBatchVerifyIsBestEffort(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	addCourse(t, l, "COURSE-001", 100)
	enroll(t, l, alice, "COURSE-001")
	enroll(t, l, carol, "COURSE-001")

	results, err := l.Market.BatchVerifyCompletion(ctx, deployer, []Address{alice, bob, carol, ZeroAddress}, "COURSE-001")
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, alice, results[0].Holder)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, uint64(1), results[0].CertificateID)

	assert.Equal(t, bob, results[1].Holder)
	assert.ErrorIs(t, results[1].Err, ErrNotPurchased)
	assert.Zero(t, results[1].CertificateID)

	assert.NoError(t, results[2].Err)
	assert.Equal(t, uint64(2), results[2].CertificateID)

	assert.ErrorIs(t, results[3].Err, ErrNotPurchased)

	for _, holder := range []Address{alice, carol} {
		has, err := l.Certificates.HasCertificate(ctx, holder, "COURSE-001")
		require.NoError(t, err)
		assert.True(t, has)
	}
}

func TestBatchVerifyChecksCallerFirst(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	addCourse(t, l, "COURSE-001", 100)
	enroll(t, l, alice, "COURSE-001")

	_, err := l.Market.BatchVerifyCompletion(ctx, mallory, []Address{alice}, "COURSE-001")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = l.Market.BatchVerifyCompletion(ctx, deployer, nil, "COURSE-001")
	assert.ErrorIs(t, err, ErrEmptyBatch)

	has, err := l.Certificates.HasCertificate(ctx, alice, "COURSE-001")
	require.NoError(t, err)
	assert.False(t, has)
}

type stubOracle struct {
	done map[Address]bool
	err  error
}

func (o *stubOracle) Completed(_ context.Context, holder Address, _ string) (bool, error) {
	return o.done[holder], o.err
}

func TestVerifyWithOracle(t *testing.T) {
	oracle := &stubOracle{done: map[Address]bool{alice: true}}
	l := newTestLedger(t, func(o *Options) { o.Oracle = oracle })
	ctx := context.Background()
	addCourse(t, l, "COURSE-001", 100)
	enroll(t, l, alice, "COURSE-001")
	enroll(t, l, bob, "COURSE-001")

	id, err := l.Market.VerifyWithOracle(ctx, alice, "COURSE-001")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	_, err = l.Market.VerifyWithOracle(ctx, bob, "COURSE-001")
	assert.ErrorIs(t, err, ErrNotConfirmed)

	oracle.err = errors.New("connection refused")
	_, err = l.Market.VerifyWithOracle(ctx, bob, "COURSE-001")
	assert.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestVerifyWithOracleUnconfigured(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Market.VerifyWithOracle(context.Background(), alice, "COURSE-001")
	assert.ErrorIs(t, err, ErrOracleUnavailable)
}
