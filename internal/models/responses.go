package models

import "time"

type UserResponse struct {
	ID        uint       `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	IsOnline  bool       `json:"is_online"`
	LastSeen  *time.Time `json:"last_seen"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type GetUsersResponse struct {
	Users []*UserResponse `json:"users"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
	Total int64           `json:"total"`
}

type MessageListResponse struct {
	Messages []Message `json:"messages"`
	Total    int64     `json:"total"`
}

// UnreadCountsResponse maps sender id to the number of unread messages
// that sender has addressed to the requesting user.
type UnreadCountsResponse struct {
	Counts map[uint]int64 `json:"counts"`
}
