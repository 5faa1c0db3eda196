package dto

type StatsResponse struct {
	Users           int64            `json:"users"`
	BlockedUsers    int64            `json:"blocked_users"`
	ActiveListings  int64            `json:"active_listings"`
	PendingPayments int64            `json:"pending_payments"`
	Requests        map[string]int64 `json:"requests"`
	ActiveChats     int64            `json:"active_chats"`
}

type SettingRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}
