// Endpoints is the mechanical surface of path + method + body + response
// type the HTTP facade exposes (spec §4.C). Each call validates its body,
// then runs it through Client.do.
package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stoat-chat/stoatgo"
)

// SendMessageRequest is the body of POST /channels/{channel}/messages.
// Nonce is filled in automatically if empty, giving idempotent retries
// the same protection the original client-side nonce scheme provides.
type SendMessageRequest struct {
	Nonce        string              `json:"nonce,omitempty"`
	Content      string              `json:"content,omitempty"`
	Attachments  []string            `json:"attachments,omitempty"`
	Replies      []stoat.MessageReply `json:"replies,omitempty"`
	Embeds       []stoat.Embed       `json:"embeds,omitempty"`
	Masquerade   *stoat.Masquerade   `json:"masquerade,omitempty"`
	Interactions *stoat.Interactions `json:"interactions,omitempty"`
}

// SendMessage posts a new message to channelID.
func (c *Client) SendMessage(ctx context.Context, channelID stoat.ID, req SendMessageRequest) (*stoat.Message, error) {
	if err := runValidators(
		maxLen("content", req.Content, maxMessageContentLength),
		maxCount("attachments", len(req.Attachments), maxMessageAttachments),
		maxCount("replies", len(req.Replies), maxMessageReplies),
		maxCount("embeds", len(req.Embeds), maxMessageEmbeds),
	); err != nil {
		return nil, err
	}
	if req.Content == "" && len(req.Attachments) == 0 && len(req.Embeds) == 0 {
		return nil, stoat.NewAPIError(&stoat.APIError{Type: stoat.ErrTypeEmptyMessage})
	}
	if req.Nonce == "" {
		req.Nonce = uuid.NewString()
	}

	var out stoat.Message
	err := c.do(ctx, requestSpec{
		host:   "api",
		method: "POST",
		path:   fmt.Sprintf("/channels/%s/messages", channelID),
		body:   req,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EditMessageRequest is the body of PATCH /channels/{channel}/messages/{message}.
type EditMessageRequest struct {
	Content *string       `json:"content,omitempty"`
	Embeds  []stoat.Embed `json:"embeds,omitempty"`
}

// EditMessage patches an existing message.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID stoat.ID, req EditMessageRequest) (*stoat.Message, error) {
	if req.Content != nil {
		if err := runValidators(maxLen("content", *req.Content, maxMessageContentLength)); err != nil {
			return nil, err
		}
	}
	var out stoat.Message
	err := c.do(ctx, requestSpec{
		host:   "api",
		method: "PATCH",
		path:   fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID),
		body:   req,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMessage removes a single message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID stoat.ID) error {
	return c.do(ctx, requestSpec{
		host:   "api",
		method: "DELETE",
		path:   fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID),
	})
}

// BulkDeleteMessagesRequest is the body of DELETE /channels/{channel}/messages/bulk.
type BulkDeleteMessagesRequest struct {
	IDs []stoat.ID `json:"ids"`
}

// BulkDeleteMessages removes several messages from channelID at once.
// Ids older than 7 days are dropped before the request is built, matching
// the platform's retention cutoff for bulk deletion.
func (c *Client) BulkDeleteMessages(ctx context.Context, channelID stoat.ID, ids []stoat.ID) error {
	oldest := time.Now().Add(-7 * 24 * time.Hour)
	kept := make([]stoat.ID, 0, len(ids))
	for _, id := range ids {
		ts, ok := id.Timestamp()
		if ok && ts.After(oldest) {
			kept = append(kept, id)
		}
	}

	if err := runValidators(maxCount("ids", len(kept), maxBulkDeleteMessages)); err != nil {
		return err
	}
	return c.do(ctx, requestSpec{
		host:   "api",
		method: "DELETE",
		path:   fmt.Sprintf("/channels/%s/messages/bulk", channelID),
		body:   BulkDeleteMessagesRequest{IDs: kept},
	})
}

// FetchUser fetches a single user by id.
func (c *Client) FetchUser(ctx context.Context, userID stoat.ID) (*stoat.User, error) {
	var out stoat.User
	err := c.do(ctx, requestSpec{
		host:   "api",
		method: "GET",
		path:   fmt.Sprintf("/users/%s", userID),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchMember fetches a single server member.
func (c *Client) FetchMember(ctx context.Context, serverID, userID stoat.ID) (*stoat.Member, error) {
	var out stoat.Member
	err := c.do(ctx, requestSpec{
		host:   "api",
		method: "GET",
		path:   fmt.Sprintf("/servers/%s/members/%s", serverID, userID),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchMembers fetches every member of a server.
func (c *Client) FetchMembers(ctx context.Context, serverID stoat.ID) ([]stoat.Member, error) {
	var out struct {
		Members []stoat.Member `json:"members"`
	}
	err := c.do(ctx, requestSpec{
		host:   "api",
		method: "GET",
		path:   fmt.Sprintf("/servers/%s/members", serverID),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Members, nil
}

// BanMemberRequest is the body of PUT /servers/{server}/bans/{user}.
type BanMemberRequest struct {
	Reason string `json:"reason,omitempty"`
}

// BanMember bans userID from serverID.
func (c *Client) BanMember(ctx context.Context, serverID, userID stoat.ID, req BanMemberRequest) error {
	return c.do(ctx, requestSpec{
		host:   "api",
		method: "PUT",
		path:   fmt.Sprintf("/servers/%s/bans/%s", serverID, userID),
		body:   req,
	})
}

// EditMemberRequest is the body of PATCH /servers/{server}/members/{user}.
type EditMemberRequest struct {
	Nickname *string    `json:"nickname,omitempty"`
	Roles    []stoat.ID `json:"roles,omitempty"`
	Timeout  *string    `json:"timeout,omitempty"` // RFC3339; omitted when nil
	Remove   []string   `json:"remove,omitempty"`
}

// EditMember patches a server member.
func (c *Client) EditMember(ctx context.Context, serverID, userID stoat.ID, req EditMemberRequest) (*stoat.Member, error) {
	var out stoat.Member
	err := c.do(ctx, requestSpec{
		host:   "api",
		method: "PATCH",
		path:   fmt.Sprintf("/servers/%s/members/%s", serverID, userID),
		body:   req,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EditRoleRequest is the body of PATCH /servers/{server}/roles/{role}.
type EditRoleRequest struct {
	Name        *string         `json:"name,omitempty"`
	Colour      *string         `json:"colour,omitempty"`
	Hoist       *bool           `json:"hoist,omitempty"`
	Rank        *int            `json:"rank,omitempty"`
	Permissions *stoat.Override `json:"permissions,omitempty"`
}

// EditRole patches a server role, creating it if roleID is new.
func (c *Client) EditRole(ctx context.Context, serverID, roleID stoat.ID, req EditRoleRequest) (*stoat.Role, error) {
	if req.Name != nil {
		if err := runValidators(notEmpty("name", *req.Name), maxLen("name", *req.Name, maxServerNameLength)); err != nil {
			return nil, err
		}
	}
	var out stoat.Role
	err := c.do(ctx, requestSpec{
		host:   "api",
		method: "PATCH",
		path:   fmt.Sprintf("/servers/%s/roles/%s", serverID, roleID),
		body:   req,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateServerRequest is the body of POST /servers/create.
type CreateServerRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Nonce       string  `json:"nonce,omitempty"`
}

// CreateServerResponse wraps the created server and its default channels.
type CreateServerResponse struct {
	Server   stoat.Server    `json:"server"`
	Channels []stoat.Channel `json:"channels"`
}

// CreateServer creates a new server owned by the session user.
func (c *Client) CreateServer(ctx context.Context, req CreateServerRequest) (*CreateServerResponse, error) {
	if err := runValidators(
		notEmpty("name", req.Name),
		maxLen("name", req.Name, maxServerNameLength),
	); err != nil {
		return nil, err
	}
	if req.Nonce == "" {
		req.Nonce = uuid.NewString()
	}
	var out CreateServerResponse
	err := c.do(ctx, requestSpec{
		host:   "api",
		method: "POST",
		path:   "/servers/create",
		body:   req,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
