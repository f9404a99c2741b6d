package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

var (
	maxDevices   = pflag.Int("devices", 1000, "number of devices to create")
	workers      = pflag.Int("workers", 32, "concurrent HTTP workers")
	httpHostPort = pflag.String("addr", "127.0.0.1:3000", "server host:port")
	username     = pflag.String("username", "admin", "login username")
	password     = pflag.String("password", "", "login password")
)

var rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

var statuses = []string{"active", "maintenance", "broken", "unknown"}

type client struct {
	base  string
	token string
	http  *http.Client
}

func (c *client) do(method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.http.Do(req)
}

func main() {
	pflag.Parse()

	c := &client{base: "http://" + *httpHostPort, http: &http.Client{Timeout: 30 * time.Second}}

	resp, err := c.do(http.MethodGet, "/healthz", nil)
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}
	fmt.Printf("http server verified\n")

	resp, err = c.do(http.MethodPost, "/api/auth/login", map[string]string{"username": *username, "password": *password})
	if err != nil {
		log.Fatal("login failed:", err)
	}
	var login struct {
		Token string `json:"token"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&login)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || login.Token == "" {
		log.Fatalf("login failed with status %d", resp.StatusCode)
	}
	c.token = login.Token
	fmt.Printf("logged in as %s\n", *username)

	ids := make([]uint, *maxDevices)

	usedTime := runParallel(*maxDevices, func(i int) error {
		id, err := createDevice(c, i)
		ids[i] = id
		return err
	})
	report("created devices", *maxDevices, usedTime)

	usedTime = runParallel(*maxDevices, func(i int) error {
		return doAction(c, ids[i])
	})
	report("did actions for devices", *maxDevices*3, usedTime)

	start := time.Now()
	resp, err = c.do(http.MethodGet, "/api/dashboard", nil)
	if err != nil {
		log.Fatal("dashboard failed:", err)
	}
	resp.Body.Close()
	fmt.Printf("dashboard: status=%d used time=%v\n", resp.StatusCode, time.Since(start))

	usedTime = runParallel(*maxDevices, func(i int) error {
		return expect(c.do(http.MethodDelete, fmt.Sprintf("/api/devices/%d", ids[i]), nil))
	})
	report("deleted devices with cascade", *maxDevices, usedTime)
}

// runParallel fans n jobs out over the worker pool and returns the wall time.
func runParallel(n int, job func(i int) error) time.Duration {
	start := time.Now()
	jobs := make(chan int)
	var failed atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := job(i); err != nil {
					failed.Add(1)
					fmt.Printf("\nerror: %v\n", err)
				}
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if f := failed.Load(); f > 0 {
		fmt.Printf("\n%d of %d jobs failed\n", f, n)
	}
	return time.Since(start)
}

func report(what string, actions int, usedTime time.Duration) {
	fmt.Printf(
		"\r%s: count=%v used time=%v seconds, throughput=%v action/second\n",
		what, *maxDevices, usedTime.Seconds(), float64(actions)/usedTime.Seconds(),
	)
}

func expect(resp *http.Response, err error) error {
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode)
	}
	return nil
}

func pick[T any](items []T) T {
	rndMu.Lock()
	defer rndMu.Unlock()
	return items[rnd.Intn(len(items))]
}

func createDevice(c *client, i int) (uint, error) {
	resp, err := c.do(http.MethodPost, "/api/devices", map[string]any{
		"deviceName":   fmt.Sprintf("bench-device-%d", i),
		"serialNumber": uuid.NewString(),
		"model":        "BENCH-1",
		"status":       pick(statuses),
		"location":     fmt.Sprintf("rack %d", i%40),
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var created struct {
		Entity struct {
			ID uint `json:"id"`
		} `json:"entity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("create device: status %d", resp.StatusCode)
	}
	fmt.Printf("\rcreated device %v", i)
	return created.Entity.ID, nil
}

// doAction raises an alert, schedules maintenance and updates the device in
// random order.
func doAction(c *client, deviceID uint) error {
	actions := []func() error{
		func() error {
			return expect(c.do(http.MethodPost, "/api/alerts", map[string]any{
				"deviceId": deviceID, "message": "benchmark alert", "severity": "low",
			}))
		},
		func() error {
			return expect(c.do(http.MethodPost, "/api/maintenance", map[string]any{
				"deviceId": deviceID, "maintenanceType": "inspection",
				"scheduledDate": time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
			}))
		},
		func() error {
			return expect(c.do(http.MethodPut, fmt.Sprintf("/api/devices/%d", deviceID), map[string]any{
				"status": pick(statuses),
			}))
		},
	}
	rndMu.Lock()
	rnd.Shuffle(len(actions), func(i, j int) { actions[i], actions[j] = actions[j], actions[i] })
	rndMu.Unlock()

	for _, action := range actions {
		if err := action(); err != nil {
			return err
		}
	}
	fmt.Printf("\rexecuted actions for device %v", deviceID)
	return nil
}
