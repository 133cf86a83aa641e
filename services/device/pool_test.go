package device

import (
	"errors"
	"net/http"
	"testing"

	"localhunt-auth/httpServices/httpsms"
	model "localhunt-auth/models/device"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	rows    []model.SendingDevice
	listErr error

	upserted    []model.SendingDevice
	incremented []string
	markedOff   []string
}

func (f *fakeStore) ListByPhones(phones []string) ([]model.SendingDevice, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *fakeStore) Upsert(rows []model.SendingDevice) error {
	f.upserted = append(f.upserted, rows...)
	return nil
}

func (f *fakeStore) IncrementSent(phone string) error {
	f.incremented = append(f.incremented, phone)
	for i := range f.rows {
		if f.rows[i].Phone == phone {
			f.rows[i].SentToday++
		}
	}
	return nil
}

func (f *fakeStore) MarkOffline(phone string) error {
	f.markedOff = append(f.markedOff, phone)
	for i := range f.rows {
		if f.rows[i].Phone == phone {
			f.rows[i].Status = model.StatusOffline
		}
	}
	return nil
}

// fakeSender scripts an outcome per sender identity.
type fakeSender struct {
	outcomes map[string]*httpsms.SendOutcome
	errs     map[string]error
	attempts []string
}

func (f *fakeSender) SendText(to, from, content string) (*httpsms.SendOutcome, error) {
	f.attempts = append(f.attempts, from)
	if err, ok := f.errs[from]; ok {
		return nil, err
	}
	if outcome, ok := f.outcomes[from]; ok {
		return outcome, nil
	}
	return &httpsms.SendOutcome{StatusCode: http.StatusOK, Delivered: true}, nil
}

func activeDevice(phone string, sent, quota int) model.SendingDevice {
	return model.SendingDevice{Phone: phone, SentToday: sent, DailyQuota: quota, Status: model.StatusActive}
}

func TestCandidatesOrderedLeastUsedFirst(t *testing.T) {
	store := &fakeStore{rows: []model.SendingDevice{
		activeDevice("+911", 5, 80),
		activeDevice("+912", 1, 80),
		activeDevice("+913", 3, 80),
	}}
	pool := NewPool(store, &fakeSender{}, []string{"+911", "+912", "+913"}, 80)

	candidates := pool.Candidates()
	require.Len(t, candidates, 3)
	assert.Equal(t, "+912", candidates[0].Phone)
	assert.Equal(t, "+913", candidates[1].Phone)
	assert.Equal(t, "+911", candidates[2].Phone)
}

func TestCandidatesPreferUnderQuota(t *testing.T) {
	store := &fakeStore{rows: []model.SendingDevice{
		activeDevice("+911", 80, 80),
		activeDevice("+912", 10, 80),
	}}
	pool := NewPool(store, &fakeSender{}, []string{"+911", "+912"}, 80)

	candidates := pool.Candidates()
	require.Len(t, candidates, 1)
	assert.Equal(t, "+912", candidates[0].Phone)
}

func TestCandidatesOverQuotaDegradation(t *testing.T) {
	// Every device over quota: the full active set stays available as a
	// last resort instead of hard-failing.
	store := &fakeStore{rows: []model.SendingDevice{
		activeDevice("+911", 90, 80),
		activeDevice("+912", 85, 80),
	}}
	pool := NewPool(store, &fakeSender{}, []string{"+911", "+912"}, 80)

	candidates := pool.Candidates()
	require.Len(t, candidates, 2)
	assert.Equal(t, "+912", candidates[0].Phone)
}

func TestCandidatesSkipOffline(t *testing.T) {
	offline := activeDevice("+911", 0, 80)
	offline.Status = model.StatusOffline
	store := &fakeStore{rows: []model.SendingDevice{offline, activeDevice("+912", 50, 80)}}
	pool := NewPool(store, &fakeSender{}, []string{"+911", "+912"}, 80)

	candidates := pool.Candidates()
	require.Len(t, candidates, 1)
	assert.Equal(t, "+912", candidates[0].Phone)
}

func TestCandidatesRefreshFailureDegradesToEmpty(t *testing.T) {
	store := &fakeStore{listErr: errors.New("store down")}
	pool := NewPool(store, &fakeSender{}, []string{"+911"}, 80)

	assert.Empty(t, pool.Candidates())
}

func TestCandidatesFallBackToConfiguredDevices(t *testing.T) {
	store := &fakeStore{} // no rows in the store yet
	pool := NewPool(store, &fakeSender{}, []string{"+911", "+912"}, 42)

	candidates := pool.Candidates()
	require.Len(t, candidates, 2)
	assert.Equal(t, 42, candidates[0].DailyQuota)
	assert.Equal(t, 0, candidates[0].SentToday)
}

func TestSendWithFallbackThirdDeviceSucceeds(t *testing.T) {
	store := &fakeStore{rows: []model.SendingDevice{
		activeDevice("+911", 0, 80),
		activeDevice("+912", 1, 80),
		activeDevice("+913", 2, 80),
	}}
	sender := &fakeSender{
		errs: map[string]error{"+911": errors.New("connection refused")},
		outcomes: map[string]*httpsms.SendOutcome{
			"+912": {StatusCode: http.StatusBadRequest, Body: `{"message":"bad request"}`},
		},
	}
	pool := NewPool(store, sender, []string{"+911", "+912", "+913"}, 80)

	result := pool.SendWithFallback("+919876543210", "code 1234", 0)

	assert.True(t, result.Delivered)
	assert.Equal(t, "+913", result.Device)
	assert.Equal(t, []string{"+911", "+912", "+913"}, sender.attempts)
	assert.Equal(t, []string{"+913"}, store.incremented)
	// Plain failures do not take devices out of rotation.
	assert.Empty(t, store.markedOff)
}

func TestSendWithFallbackMarksRejectedIdentityOffline(t *testing.T) {
	store := &fakeStore{rows: []model.SendingDevice{
		activeDevice("+911", 0, 80),
		activeDevice("+912", 1, 80),
	}}
	sender := &fakeSender{
		outcomes: map[string]*httpsms.SendOutcome{
			"+911": {StatusCode: http.StatusUnprocessableEntity, FromRejected: true},
		},
	}
	pool := NewPool(store, sender, []string{"+911", "+912"}, 80)

	result := pool.SendWithFallback("+919876543210", "code 1234", 0)

	assert.True(t, result.Delivered)
	assert.Equal(t, "+912", result.Device)
	assert.Equal(t, []string{"+911"}, store.markedOff)

	// The rejected identity is out of the next selection immediately.
	for _, d := range pool.Candidates() {
		assert.NotEqual(t, "+911", d.Phone)
	}
}

func TestSendWithFallbackExhaustionReturnsLastError(t *testing.T) {
	store := &fakeStore{rows: []model.SendingDevice{
		activeDevice("+911", 0, 80),
		activeDevice("+912", 1, 80),
	}}
	sender := &fakeSender{
		outcomes: map[string]*httpsms.SendOutcome{
			"+911": {StatusCode: http.StatusBadRequest, Body: "first error"},
			"+912": {StatusCode: http.StatusBadGateway, Body: "second error"},
		},
	}
	pool := NewPool(store, sender, []string{"+911", "+912"}, 80)

	result := pool.SendWithFallback("+919876543210", "code 1234", 0)

	assert.False(t, result.Delivered)
	assert.Contains(t, result.LastError, "second error")
	assert.Empty(t, store.incremented)
}

func TestSendWithFallbackRespectsTryLimit(t *testing.T) {
	store := &fakeStore{rows: []model.SendingDevice{
		activeDevice("+911", 0, 80),
		activeDevice("+912", 1, 80),
		activeDevice("+913", 2, 80),
	}}
	sender := &fakeSender{
		outcomes: map[string]*httpsms.SendOutcome{
			"+911": {StatusCode: http.StatusBadRequest},
			"+912": {StatusCode: http.StatusBadRequest},
		},
	}
	pool := NewPool(store, sender, []string{"+911", "+912", "+913"}, 80)

	result := pool.SendWithFallback("+919876543210", "code 1234", 2)

	assert.False(t, result.Delivered)
	assert.Len(t, sender.attempts, 2)
}

func TestSendWithFallbackNoDestination(t *testing.T) {
	pool := NewPool(&fakeStore{}, &fakeSender{}, nil, 80)
	result := pool.SendWithFallback("", "code 1234", 0)
	assert.False(t, result.Delivered)
	assert.Equal(t, "missing destination phone", result.LastError)
}

func TestSendWithFallbackNoCandidates(t *testing.T) {
	store := &fakeStore{listErr: errors.New("store down")}
	pool := NewPool(store, &fakeSender{}, []string{"+911"}, 80)

	result := pool.SendWithFallback("+919876543210", "code 1234", 0)

	assert.False(t, result.Delivered)
	assert.Equal(t, "no active devices available", result.LastError)
}

func TestEnsureDevicesUpserts(t *testing.T) {
	store := &fakeStore{}
	pool := NewPool(store, &fakeSender{}, []string{"+911", "+912"}, 80)

	pool.EnsureDevices()

	require.Len(t, store.upserted, 2)
	assert.Equal(t, "+911", store.upserted[0].Phone)
	assert.Equal(t, 80, store.upserted[0].DailyQuota)
	assert.Equal(t, model.StatusActive, store.upserted[0].Status)
}
