// Package notify delivers run summaries to chat destinations.
//
// Delivery is fire-and-forget: a failed send is returned to the caller as a
// *SendError and never retried. The Telegram sink takes its settings from an
// explicit config.TelegramConfig; nothing is read from globals.
package notify
