package commands

import (
	"net"
	"strings"

	"github.com/sandroweb/html-template-project/internal/config"
	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
	"github.com/sandroweb/html-template-project/internal/tasks"
)

// MyIPCmd runs the development build with localhost in the base path
// replaced by this machine's LAN address, so other devices can load it.
type MyIPCmd struct{}

func (m *MyIPCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	ip, err := lanIPv4()
	if err != nil {
		return err
	}
	base := lanBasePath(cfg.Paths.BasePathLocal, ip)
	g.logger().Info("Using LAN base path", "base_path", base)
	return runPlan(g, root, tasks.Compose(config.ModeDevelopment, base))
}

func lanBasePath(base string, ip net.IP) string {
	return strings.ReplaceAll(base, "localhost", ip.String())
}

// lanIPv4 returns the first non-loopback IPv4 address of an interface that
// is up.
func lanIPv4() (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "list network interfaces").Build()
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		if ip := firstIPv4(addrs); ip != nil {
			return ip, nil
		}
	}
	return nil, ferrors.RuntimeError("no LAN IPv4 address found").Build()
}

func firstIPv4(addrs []net.Addr) net.IP {
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip4 := ip.To4(); ip4 != nil && !ip4.IsLoopback() && !ip4.IsLinkLocalUnicast() {
			return ip4
		}
	}
	return nil
}
