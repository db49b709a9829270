// Package model defines shared data types used across the bridge.
//
// All types are immutable value records: snapshots hold them by value and
// the diff layer compares them with their Equal methods, so adding a field
// to a record means adding it to Equal as well.
//
// Conventions:
//   - Money and quantities: decimal.Decimal (broker sends JSON numbers;
//     decimal comparison ignores formatting, 1.0 equals 1.00)
//   - Timestamps: time.Time in UTC
//   - IDs: broker order ids are int64, snapshot keys are strings
package model
