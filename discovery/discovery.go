// Package discovery advertises the HTTP service on the local network over mDNS
// and browses for other instances.
package discovery

import (
	"context"
	"fmt"
	stdlog "log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/log"
	"github.com/hashicorp/mdns"
	"github.com/samber/lo"
)

// Service is the DNS-SD service type.
const Service = "_" + constant.Sharpmote + "._tcp"

// APIPath is advertised so clients need not guess the REST prefix.
const APIPath = "/api/v1"

// Instance is one discovered server.
type Instance struct {
	Name    string
	Host    string
	Addr    net.IP
	Port    int
	Version string
	Path    string
}

// URL returns the base URL of the instance.
func (i Instance) URL() string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(i.Addr.String(), fmt.Sprint(i.Port)))
}

// TXT builds the TXT records advertised for this process.
func TXT() []string {
	return []string{"version=" + constant.Version, "path=" + APIPath}
}

// Advertise announces the service on port until ctx is done.
func Advertise(ctx context.Context, port int) error {
	host, err := os.Hostname()
	if err != nil {
		host = constant.Sharpmote
	}

	svc, err := mdns.NewMDNSService(host, Service, "", "", port, localIPs(), TXT())
	if err != nil {
		return fmt.Errorf("mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: svc, Logger: stdlog.New(log.Writer(), "", 0)})
	if err != nil {
		return fmt.Errorf("mdns server: %w", err)
	}

	log.WithFields(log.Fields{"module": "discovery", "service": Service, "port": port}).Info("advertising")

	<-ctx.Done()
	return server.Shutdown()
}

// localIPs returns the non-loopback IPv4 addresses of this host. A nil result
// lets mdns resolve the hostname instead.
func localIPs() []net.IP {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}

	ips := lo.FilterMap(addrs, func(a net.Addr, _ int) (net.IP, bool) {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() || ipnet.IP.To4() == nil {
			return nil, false
		}
		return ipnet.IP, true
	})

	if len(ips) == 0 {
		return nil
	}
	return ips
}

// Browse collects instances answering within timeout.
func Browse(ctx context.Context, timeout time.Duration) ([]Instance, error) {
	entries := make(chan *mdns.ServiceEntry, 32)
	collected := make(chan []Instance, 1)

	go func() {
		var found []Instance
		for entry := range entries {
			if inst, ok := fromEntry(entry); ok {
				found = append(found, inst)
			}
		}
		collected <- lo.UniqBy(found, func(i Instance) string { return i.URL() })
	}()

	params := mdns.DefaultParams(Service)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	params.Logger = stdlog.New(log.Writer(), "", 0)

	err := mdns.QueryContext(ctx, params)
	close(entries)
	found := <-collected

	if err != nil && ctx.Err() == nil {
		return found, fmt.Errorf("mdns query: %w", err)
	}
	return found, nil
}

func fromEntry(entry *mdns.ServiceEntry) (Instance, bool) {
	if entry == nil || entry.AddrV4 == nil || !strings.Contains(entry.Name, Service) {
		return Instance{}, false
	}

	name, _, _ := strings.Cut(entry.Name, "."+Service)
	inst := Instance{
		Name: name,
		Host: entry.Host,
		Addr: entry.AddrV4,
		Port: entry.Port,
		Path: APIPath,
	}

	for _, field := range entry.InfoFields {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch k {
		case "version":
			inst.Version = v
		case "path":
			inst.Path = v
		}
	}

	return inst, true
}
