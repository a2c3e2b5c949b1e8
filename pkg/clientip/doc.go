// Package clientip extracts real client IP addresses from incoming requests.
//
// Headers are checked in priority order and the first valid address wins:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry)
//  4. X-Real-IP (nginx and other proxies)
//  5. RemoteAddr (direct connection)
//
// Addresses are normalized with net.IP.String and the unspecified address
// 0.0.0.0 is rejected. When nothing valid is found the raw RemoteAddr is
// returned, so GetIP never fails.
//
//	ip := clientip.GetIP(req)
package clientip
