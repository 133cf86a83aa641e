package device

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"localhunt-auth/httpServices/httpsms"
	"localhunt-auth/logger"
	model "localhunt-auth/models/device"
)

const refreshTTL = 30 * time.Second

// Store is the persistence surface the pool needs.
type Store interface {
	ListByPhones(phones []string) ([]model.SendingDevice, error)
	Upsert(rows []model.SendingDevice) error
	IncrementSent(phone string) error
	MarkOffline(phone string) error
}

// Sender submits one message through the SMS transport.
type Sender interface {
	SendText(to, from, content string) (*httpsms.SendOutcome, error)
}

// SendResult is the structured outcome of a fallback send. Delivery
// failure is reported here, never as a Go error.
type SendResult struct {
	Delivered bool
	Device    string
	LastError string
}

// Pool caches sending-device state and picks sender identities for
// outbound messages, failing over across them. The cache is rebuilt
// wholesale from the store when empty or older than the TTL.
type Pool struct {
	store        Store
	sender       Sender
	configured   []string
	defaultQuota int

	mu          sync.Mutex
	devices     map[string]model.SendingDevice
	lastRefresh time.Time
}

func NewPool(store Store, sender Sender, configured []string, defaultQuota int) *Pool {
	return &Pool{
		store:        store,
		sender:       sender,
		configured:   configured,
		defaultQuota: defaultQuota,
		devices:      map[string]model.SendingDevice{},
	}
}

// EnsureDevices upserts the configured identities into the store so rows
// exist before the first send, then primes the cache. Failure is logged;
// the pool falls back to env defaults on refresh.
func (p *Pool) EnsureDevices() {
	rows := make([]model.SendingDevice, 0, len(p.configured))
	for _, phone := range p.configured {
		rows = append(rows, model.SendingDevice{
			Phone:      phone,
			Label:      "device-" + phone,
			DailyQuota: p.defaultQuota,
			Status:     model.StatusActive,
		})
	}
	if err := p.store.Upsert(rows); err != nil {
		logger.Error("Failed to ensure sms devices in store", err)
	}
	p.refresh()
}

// refresh rebuilds the cache from the store. A store failure degrades to
// an empty cache; an empty result set falls back to the configured
// identities with default quotas.
func (p *Pool) refresh() {
	rows, err := p.store.ListByPhones(p.configured)
	if err != nil {
		logger.Error("Device refresh failed, clearing cache", err)
		p.mu.Lock()
		p.devices = map[string]model.SendingDevice{}
		p.mu.Unlock()
		return
	}

	devices := map[string]model.SendingDevice{}
	if len(rows) == 0 {
		for _, phone := range p.configured {
			devices[phone] = model.SendingDevice{
				Phone:      phone,
				DailyQuota: p.defaultQuota,
				Status:     model.StatusActive,
			}
		}
		logger.Warning("No rows in sms_devices; using configured fallback devices")
	} else {
		for _, row := range rows {
			if row.DailyQuota == 0 {
				row.DailyQuota = p.defaultQuota
			}
			devices[row.Phone] = row
		}
	}

	p.mu.Lock()
	p.devices = devices
	p.lastRefresh = time.Now()
	p.mu.Unlock()
}

// Candidates returns active devices ordered least-used first. When some
// device is still under quota, only the under-quota subset is returned;
// otherwise every active device remains a last resort.
func (p *Pool) Candidates() []model.SendingDevice {
	p.mu.Lock()
	stale := len(p.devices) == 0 || time.Since(p.lastRefresh) > refreshTTL
	p.mu.Unlock()
	if stale {
		p.refresh()
	}

	p.mu.Lock()
	candidates := make([]model.SendingDevice, 0, len(p.devices))
	for _, d := range p.devices {
		if d.IsActive() {
			candidates = append(candidates, d)
		}
	}
	p.mu.Unlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].SentToday < candidates[j].SentToday
	})

	underQuota := make([]model.SendingDevice, 0, len(candidates))
	for _, d := range candidates {
		if d.UnderQuota() {
			underQuota = append(underQuota, d)
		}
	}
	if len(underQuota) > 0 {
		return underQuota
	}
	if len(candidates) > 0 {
		logger.Warning("Every active device is over quota until " +
			candidates[0].QuotaResetsAt().Format(time.RFC3339) + "; sending anyway")
	}
	return candidates
}

// SendWithFallback tries each candidate in order until one delivers.
// tryLimit <= 0 means every candidate may be tried. A sender identity the
// transport rejects outright is marked offline immediately so the next
// selection skips it.
func (p *Pool) SendWithFallback(to, content string, tryLimit int) SendResult {
	if to == "" {
		return SendResult{LastError: "missing destination phone"}
	}

	candidates := p.Candidates()
	if len(candidates) == 0 {
		return SendResult{LastError: "no active devices available"}
	}

	attempts := len(candidates)
	if tryLimit > 0 && tryLimit < attempts {
		attempts = tryLimit
	}

	var lastError string
	for _, d := range candidates[:attempts] {
		outcome, err := p.sender.SendText(to, d.Phone, content)
		if err != nil {
			lastError = fmt.Sprintf("request-exception: %v", err)
			logger.Error("SMS transport call failed for "+d.Phone, err)
			continue
		}

		if outcome.Delivered {
			if err := p.store.IncrementSent(d.Phone); err != nil {
				logger.Error("Failed to increment sent counter for "+d.Phone, err)
			}
			p.refresh()
			logger.Success("Sent SMS via " + d.Phone + " -> " + to)
			return SendResult{Delivered: true, Device: d.Phone}
		}

		lastError = fmt.Sprintf("status=%d response=%s", outcome.StatusCode, outcome.Body)
		logger.Warning("SMS send failed via " + d.Phone + " " + lastError)

		if outcome.FromRejected {
			logger.Warning("Transport rejected sender identity " + d.Phone + ", marking offline")
			if err := p.store.MarkOffline(d.Phone); err != nil {
				logger.Error("Failed to mark device offline: "+d.Phone, err)
			}
			p.refresh()
		}
	}

	if lastError == "" {
		lastError = "all devices failed"
	}
	return SendResult{LastError: lastError}
}
