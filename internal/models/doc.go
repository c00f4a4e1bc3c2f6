// Package models defines the core domain models for Mess Monitor.
//
// # Collections
//
// Each model maps to one document collection in the store:
//   - User: the "users" collection, keyed by the auth uid
//   - FundTransaction: "mess_funds"
//   - Announcement: "announcements"
//   - Notification: "notifications", one per (announcement, member) pair
//   - Feedback: "feedbacks"
//   - Secrets: the single "config/secrets" document
//
// Fine is embedded in its member and has no collection of its own.
// Statistics is derived and never persisted.
//
// # Members and admins
//
// A User is either an admin or a member ("border"). Member-only fields live in
// MemberProfile, which is non-nil exactly for members; the role is read from
// the variant rather than stored alongside it, so an admin can never carry
// dues, duty or fines.
//
// # Dates
//
// Calendar dates (join dates, fine dates, transaction dates) are kept as
// YYYY-MM-DD strings, see DateLayout. Timestamp fields are server-assigned
// creation sequence numbers used for newest-first ordering.
package models
