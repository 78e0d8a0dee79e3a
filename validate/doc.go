// Package validate provides cross-process idempotency guards over Redis.
//
// # Keys
//
// Every record lives under VK_<key> as a plain string so it can be read with
// GET. The repeatable gate keeps its terminal bookkeeping in a companion hash,
// VK_<key>_STA, with the fields state (pending, success, timeout) and
// deadline (epoch ms, caller clock).
//
// # Repeatable gate
//
//	ABSENT --first call--> PENDING(record armed for Window, deadline = now+Timeout)
//	PENDING --matching call before deadline--> PENDING(record re-armed)
//	PENDING --call at/after deadline--> TIMEOUT (record dropped)
//	PENDING --MarkSucceeded--> SUCCESS
//	TIMEOUT|SUCCESS --Retention elapses or Delete--> ABSENT
//
// Calls return true only in PENDING with a matching or absent record.
//
// # What this package must NOT do
//
//   - Read-modify-write records from the client; every check-and-set is one script.
//   - Report a failed or nil reply as success.
package validate
