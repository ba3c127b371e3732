package identity

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/idna"
)

// hostnameProfile 用于证书 SAN 的主机名校验
var hostnameProfile = idna.New(
	idna.MapForLookup(),
	idna.ValidateLabels(true),
	idna.StrictDomainName(false),
	idna.VerifyDNSLength(true),
)

// sanitizeHostnames 校验并拆分主机名
//
// 返回去重后的 DNS 名（ASCII 形式）与 IP 地址，保持输入顺序。
func sanitizeHostnames(hostnames []string) ([]string, []net.IP, error) {
	if len(hostnames) == 0 {
		return nil, nil, ErrNoHostnames
	}

	seen := make(map[string]struct{}, len(hostnames))
	var dnsNames []string
	var ips []net.IP

	for _, h := range hostnames {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, nil, fmt.Errorf("%w: empty name", ErrInvalidHostname)
		}

		if ip := net.ParseIP(strings.Trim(h, "[]")); ip != nil {
			key := ip.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			ips = append(ips, ip)
			continue
		}

		ascii, err := hostnameProfile.ToASCII(strings.TrimSuffix(h, "."))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q: %v", ErrInvalidHostname, h, err)
		}
		// 通配符只允许出现在最左侧标签
		if strings.Contains(strings.TrimPrefix(ascii, "*."), "*") {
			return nil, nil, fmt.Errorf("%w: %q: misplaced wildcard", ErrInvalidHostname, h)
		}
		ascii = strings.ToLower(ascii)
		if _, dup := seen[ascii]; dup {
			continue
		}
		seen[ascii] = struct{}{}
		dnsNames = append(dnsNames, ascii)
	}

	return dnsNames, ips, nil
}
