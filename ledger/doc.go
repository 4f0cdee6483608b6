// Package ledger implements the interaction ledger: the per-copilot weight
// accounting behind leader appointment and consensus detection.
//
// A Ledger tracks an accumulated, monotonically non-decreasing weight for each
// copilot of a roster. Every reported interaction contributes
//
//	(base + keywordBonus*matches + agreementBoost*agreements) * depthMultiplier^depth
//
// damped by a fixed factor for the designated devil's advocate. The leader is
// the copilot with the lowest weight (the quietest voice gets the floor) and
// consensus is reached once the mean weight over the whole roster meets the
// configured threshold.
//
// Ledgers are plain values owned by one deliberation session. There is no
// package level state; create a fresh Ledger (or Reset an existing one) per
// conversation. All methods are safe for concurrent use.
package ledger
