package websocket

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clanarena/draftroom/internal/auction/application"
	"github.com/clanarena/draftroom/internal/auction/domain"
)

func captainIdentity() *application.Identity {
	return &application.Identity{UserID: uuid.New(), Name: "Captain A", Role: domain.RoleCaptain}
}

func TestCommandFromMessageCarriesIdentity(t *testing.T) {
	identity := captainIdentity()
	msg := &ClientCommandMessage{BaseMessage: BaseMessage{Type: MessageTypePlaceBid}}
	msg.Payload.TargetPlayerID = uuid.New()
	msg.Payload.Amount = 350

	cmd, ok := commandFromMessage(msg, identity)
	require.True(t, ok)
	assert.Equal(t, domain.CmdPlaceBid, cmd.Type)
	assert.Equal(t, identity.UserID, cmd.ActorID)
	assert.Equal(t, "Captain A", cmd.ActorName)
	assert.Equal(t, domain.RoleCaptain, cmd.ActorRole)
	assert.Equal(t, msg.Payload.TargetPlayerID, cmd.PlayerID)
	assert.Equal(t, 350, cmd.Amount)
}

func TestCommandFromMessageManualAssign(t *testing.T) {
	identity := captainIdentity()
	msg := &ClientCommandMessage{BaseMessage: BaseMessage{Type: MessageTypeManualAssignPlayer}}
	msg.Payload.PlayerID = uuid.New()
	msg.Payload.CaptainID = uuid.New()

	cmd, ok := commandFromMessage(msg, identity)
	require.True(t, ok)
	assert.Equal(t, domain.CmdManualAssignPlayer, cmd.Type)
	assert.Equal(t, msg.Payload.PlayerID, cmd.PlayerID)
	assert.Equal(t, msg.Payload.CaptainID, cmd.CaptainID)
}

func TestCommandFromMessageCoversEveryCommandType(t *testing.T) {
	identity := captainIdentity()
	wire := map[MessageType]domain.CommandType{
		MessageTypeStartAuction:         domain.CmdStartAuction,
		MessageTypeSelectPlayer:         domain.CmdSelectPlayer,
		MessageTypePlaceBid:             domain.CmdPlaceBid,
		MessageTypeConfirmBid:           domain.CmdConfirmBid,
		MessageTypePassPlayer:           domain.CmdPassPlayer,
		MessageTypeNextPlayer:           domain.CmdNextPlayer,
		MessageTypePauseAuction:         domain.CmdPauseAuction,
		MessageTypeResumeAuction:        domain.CmdResumeAuction,
		MessageTypePauseTimer:           domain.CmdPauseTimer,
		MessageTypeResumeTimer:          domain.CmdResumeTimer,
		MessageTypeUndoSoldPlayer:       domain.CmdUndoSoldPlayer,
		MessageTypeEnterAssignmentPhase: domain.CmdEnterAssignmentPhase,
		MessageTypeManualAssignPlayer:   domain.CmdManualAssignPlayer,
		MessageTypeCompleteAuction:      domain.CmdCompleteAuction,
	}
	for wireType, cmdType := range wire {
		msg := &ClientCommandMessage{BaseMessage: BaseMessage{Type: wireType}}
		cmd, ok := commandFromMessage(msg, identity)
		require.True(t, ok, "message type %s", wireType)
		assert.Equal(t, cmdType, cmd.Type)
	}
}

func TestCommandFromMessageRejectsUnknownType(t *testing.T) {
	msg := &ClientCommandMessage{BaseMessage: BaseMessage{Type: "dance"}}
	_, ok := commandFromMessage(msg, captainIdentity())
	assert.False(t, ok)
}

func TestTokenIdentityResolver(t *testing.T) {
	userID := uuid.New()
	resolver := TokenIdentityResolver{}

	identity, err := resolver.Resolve(context.Background(), uuid.New(), userID.String()+":captain:Captain A")
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, domain.RoleCaptain, identity.Role)
	assert.Equal(t, "Captain A", identity.Name)
}

func TestTokenIdentityResolverKeepsColonsInName(t *testing.T) {
	userID := uuid.New()
	resolver := TokenIdentityResolver{}

	identity, err := resolver.Resolve(context.Background(), uuid.New(), userID.String()+":admin:a:b:c")
	require.NoError(t, err)
	assert.Equal(t, "a:b:c", identity.Name)
}

func TestTokenIdentityResolverRejectsMalformedTokens(t *testing.T) {
	resolver := TokenIdentityResolver{}
	for _, token := range []string{
		"",
		"not-a-uuid:captain:name",
		uuid.NewString() + ":overlord:name",
		uuid.NewString() + ":captain",
	} {
		_, err := resolver.Resolve(context.Background(), uuid.New(), token)
		assert.Error(t, err, "token %q", token)
	}
}
