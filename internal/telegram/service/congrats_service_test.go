package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemberClient struct {
	members map[int64]*tgmodels.ChatMember
	sent    []*bot.SendMessageParams
}

func newFakeMemberClient() *fakeMemberClient {
	return &fakeMemberClient{members: make(map[int64]*tgmodels.ChatMember)}
}

func (f *fakeMemberClient) addMember(userID int64, name string) {
	f.members[userID] = &tgmodels.ChatMember{
		Type:   tgmodels.ChatMemberTypeMember,
		Member: &tgmodels.ChatMemberMember{User: &tgmodels.User{ID: userID, FirstName: name}},
	}
}

func (f *fakeMemberClient) addAdmin(userID int64, name string) {
	f.members[userID] = &tgmodels.ChatMember{
		Type:          tgmodels.ChatMemberTypeAdministrator,
		Administrator: &tgmodels.ChatMemberAdministrator{User: tgmodels.User{ID: userID, FirstName: name}},
	}
}

func (f *fakeMemberClient) addLeft(userID int64, name string) {
	f.members[userID] = &tgmodels.ChatMember{
		Type: tgmodels.ChatMemberTypeLeft,
		Left: &tgmodels.ChatMemberLeft{User: &tgmodels.User{ID: userID, FirstName: name}},
	}
}

func (f *fakeMemberClient) GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*tgmodels.ChatMember, error) {
	member, ok := f.members[params.UserID]
	if !ok {
		return nil, fmt.Errorf("unknown member %d", params.UserID)
	}
	return member, nil
}

func (f *fakeMemberClient) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
	f.sent = append(f.sent, params)
	return &tgmodels.Message{ID: len(f.sent)}, nil
}

func congratsFixture(t *testing.T, client *fakeMemberClient) (*CongratsService, *fakeUserRepository) {
	t.Helper()
	repo := newFakeUserRepository()
	birthdays := NewBirthdayService(repo)
	return NewCongratsService(birthdays, client), repo
}

func TestDispatchGroupsByChat(t *testing.T) {
	client := newFakeMemberClient()
	svc, repo := congratsFixture(t, client)

	raw := todayRaw()
	mustAdd(t, svc.birthdays, repo, 1, &tgmodels.User{ID: 101, FirstName: "A"}, raw)
	mustAdd(t, svc.birthdays, repo, 1, &tgmodels.User{ID: 102, FirstName: "B"}, raw)
	mustAdd(t, svc.birthdays, repo, 2, &tgmodels.User{ID: 103, FirstName: "C"}, raw)
	client.addMember(101, "A")
	client.addMember(102, "B")
	client.addMember(103, "C")

	require.NoError(t, svc.DispatchTodaysCongratulations(context.Background()))

	require.Len(t, client.sent, 2)
	assert.Equal(t, int64(1), client.sent[0].ChatID)
	assert.Contains(t, client.sent[0].Text, "A")
	assert.Contains(t, client.sent[0].Text, "B")
	assert.Equal(t, int64(2), client.sent[1].ChatID)
	assert.Contains(t, client.sent[1].Text, "C")
}

func TestDispatchSkipsDepartedMembers(t *testing.T) {
	client := newFakeMemberClient()
	svc, repo := congratsFixture(t, client)

	raw := todayRaw()
	mustAdd(t, svc.birthdays, repo, 1, &tgmodels.User{ID: 101, FirstName: "A"}, raw)
	mustAdd(t, svc.birthdays, repo, 1, &tgmodels.User{ID: 102, FirstName: "B"}, raw)
	client.addMember(101, "A")
	client.addLeft(102, "B")

	require.NoError(t, svc.DispatchTodaysCongratulations(context.Background()))

	require.Len(t, client.sent, 1)
	assert.Contains(t, client.sent[0].Text, "A")
	assert.NotContains(t, client.sent[0].Text, "B")
}

func TestDispatchSkipsChatWhenAllDeparted(t *testing.T) {
	client := newFakeMemberClient()
	svc, repo := congratsFixture(t, client)

	mustAdd(t, svc.birthdays, repo, 1, &tgmodels.User{ID: 101, FirstName: "A"}, todayRaw())
	client.addLeft(101, "A")

	require.NoError(t, svc.DispatchTodaysCongratulations(context.Background()))
	assert.Empty(t, client.sent)
}

func TestDispatchNoBirthdaysToday(t *testing.T) {
	client := newFakeMemberClient()
	svc, _ := congratsFixture(t, client)

	require.NoError(t, svc.DispatchTodaysCongratulations(context.Background()))
	assert.Empty(t, client.sent)
}

func TestDispatchMemberLookupErrorPropagates(t *testing.T) {
	client := newFakeMemberClient()
	svc, repo := congratsFixture(t, client)

	mustAdd(t, svc.birthdays, repo, 1, &tgmodels.User{ID: 101, FirstName: "A"}, todayRaw())
	// 101 intentionally missing from the member map.

	err := svc.DispatchTodaysCongratulations(context.Background())
	require.Error(t, err)
	assert.Empty(t, client.sent)
}

func TestDispatchIncludesAdministrators(t *testing.T) {
	client := newFakeMemberClient()
	svc, repo := congratsFixture(t, client)

	raw := todayRaw()
	mustAdd(t, svc.birthdays, repo, 1, &tgmodels.User{ID: 101, FirstName: "A"}, raw)
	mustAdd(t, svc.birthdays, repo, 1, &tgmodels.User{ID: 102, FirstName: "B"}, raw)
	client.addAdmin(101, "A")
	client.addMember(102, "B")

	require.NoError(t, svc.DispatchTodaysCongratulations(context.Background()))

	require.Len(t, client.sent, 1)
	assert.Contains(t, client.sent[0].Text, `<a href="tg://user?id=101">A</a>`)
	assert.Contains(t, client.sent[0].Text, `<a href="tg://user?id=102">B</a>`)
}

func TestDispatchMentionsAreClickable(t *testing.T) {
	client := newFakeMemberClient()
	svc, repo := congratsFixture(t, client)

	mustAdd(t, svc.birthdays, repo, 1, &tgmodels.User{ID: 101, FirstName: "Alice"}, todayRaw())
	client.addMember(101, "Alice")

	require.NoError(t, svc.DispatchTodaysCongratulations(context.Background()))
	require.Len(t, client.sent, 1)
	assert.Equal(t, `Happy birthday <a href="tg://user?id=101">Alice</a>!`, client.sent[0].Text)
	assert.Equal(t, tgmodels.ParseModeHTML, client.sent[0].ParseMode)
}
