package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// UserInfo contains the user's basic profile information from Microsoft Graph.
type UserInfo struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// GetUserInfo fetches the user's profile information using an access token.
// It takes a raw token rather than a TokenProvider so the auth package can
// identify an account mid-acquisition without a constructed client.
func GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	url := V1BaseURL + "/me?$select=id,displayName,mail,userPrincipalName"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request failed with status %d: %w",
			resp.StatusCode, WrapError(resp.StatusCode))
	}

	var userInfo UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}

	return &userInfo, nil
}

// GetUserPrincipal returns the signed-in account's email address.
// Falls back to userPrincipalName if mail is not set.
func GetUserPrincipal(ctx context.Context, accessToken string) (string, error) {
	userInfo, err := GetUserInfo(ctx, accessToken)
	if err != nil {
		return "", err
	}
	return userInfo.GetUserEmail(), nil
}

// GetUserEmail returns the user's email address.
// Falls back to userPrincipalName if mail is not set.
func (u *UserInfo) GetUserEmail() string {
	if u.Mail != "" {
		return u.Mail
	}
	return u.UserPrincipalName
}
