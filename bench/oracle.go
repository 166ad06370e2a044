// bench/oracle.go
package bench

import "fwreach/tracecollector"

// Expected returns the verdict the validation lab's firewall policy should
// produce for source reaching target (host:port). The table is fixed: only
// 10.10.0.10 -> .11:8080 and 10.10.0.20 -> .12:8080 are dropped.
func Expected(source, target string) tracecollector.Reachability {
	switch {
	case target == "10.10.0.20:8080" || target == "10.10.0.10:8080" ||
		source == "10.10.0.11" || source == "10.10.0.12":
		return tracecollector.Reachable
	case target == "10.10.0.11:8080":
		if source == "10.10.0.10" {
			return tracecollector.Unreachable
		}
		return tracecollector.Reachable
	case target == "10.10.0.12:8080":
		if source == "10.10.0.20" {
			return tracecollector.Unreachable
		}
		return tracecollector.Reachable
	default:
		return tracecollector.Pending
	}
}
