// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"net"
	"net/url"
	"sync"
	"time"
)

// probeCacheTTL bounds how often the dial probe actually runs; within the
// window the previous answer is reused so frequent list/create calls do not
// each pay a dial.
const probeCacheTTL = 5 * time.Second

const probeTimeout = 2 * time.Second

type dialConnectivityChecker struct {
	target  string
	timeout time.Duration

	mu         sync.Mutex
	lastProbe  time.Time
	lastOnline bool
}

// NewDialConnectivityChecker builds a [ConnectivityChecker] that probes the
// remote store's host with a TCP dial, the closest equivalent of the
// browser's online flag. baseURL is the document store endpoint; a URL
// without an explicit port probes 443 for https and 80 otherwise.
func NewDialConnectivityChecker(baseURL string) ConnectivityChecker {
	target := "localhost:80"

	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host := u.Host
		if u.Port() == "" {
			if u.Scheme == "https" {
				host = net.JoinHostPort(u.Hostname(), "443")
			} else {
				host = net.JoinHostPort(u.Hostname(), "80")
			}
		}
		target = host
	}

	return &dialConnectivityChecker{target: target, timeout: probeTimeout}
}

func (c *dialConnectivityChecker) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.lastProbe) < probeCacheTTL {
		return c.lastOnline
	}

	conn, err := net.DialTimeout("tcp", c.target, c.timeout)
	if err == nil {
		conn.Close()
	}

	c.lastProbe = time.Now()
	c.lastOnline = err == nil
	return c.lastOnline
}

// StaticConnectivity is a fixed connectivity answer, used in tests and in
// deployments that treat the device as always online.
type StaticConnectivity bool

func (s StaticConnectivity) Online() bool { return bool(s) }
