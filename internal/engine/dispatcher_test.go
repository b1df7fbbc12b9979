package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vrpoint/giftcert-bot/internal/giftcert"
	"github.com/vrpoint/giftcert-bot/internal/render"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wantVerb string
		wantID   int64
		wantErr  bool
	}{
		{"pdf action", "pdf:17", "pdf", 17, false},
		{"delete confirm", "del_yes:42", "del_yes", 42, false},
		{"zero id", "use:0", "use", 0, false},
		{"no separator", "pdf17", "", 0, true},
		{"empty verb", ":17", "", 0, true},
		{"non-numeric id", "pdf:abc", "", 0, true},
		{"empty token", "", "", 0, true},
		{"id with trailing junk", "pdf:17x", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verb, id, err := parseToken(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVerb, verb)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestCallback_AnonymousGetsBlockingAlert(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")

	replies := eng.Handle(context.Background(), callbackEvent(guestID, "pdf:17"))

	require.Len(t, replies, 1)
	assert.Equal(t, ReplyCallback, replies[0].Kind)
	assert.True(t, replies[0].Alert)
	assert.Equal(t, render.TextAccessDenied, replies[0].Text)
	api.AssertNotCalled(t, "DownloadPDF", mock.Anything, mock.Anything)
}

func TestCallback_MalformedTokenMakesNoBackendCall(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")

	for _, token := range []string{"garbage", "use:notanid", ":5"} {
		replies := eng.Handle(context.Background(), callbackEvent(adminID, token))

		require.Len(t, replies, 1)
		assert.True(t, replies[0].Alert)
		assert.Equal(t, render.TextBadCallback, replies[0].Text)
	}
	api.AssertExpectations(t)
}

func TestCallback_UnknownVerb(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")

	replies := eng.Handle(context.Background(), callbackEvent(adminID, "explode:17"))

	require.Len(t, replies, 1)
	assert.True(t, replies[0].Alert)
	assert.Equal(t, render.TextUnknownAction, replies[0].Text)
}

func TestCallback_PDF(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")

	pdf := []byte("%PDF")
	api.On("DownloadPDF", mock.Anything, giftcert.Ref{ID: 17}).Return(pdf, nil).Once()

	replies := eng.Handle(context.Background(), callbackEvent(adminID, "pdf:17"))

	require.Len(t, replies, 2)
	assert.Equal(t, ReplyCallback, replies[0].Kind)
	require.NotNil(t, replies[1].Document)
	assert.Equal(t, "Certificate_17.pdf", replies[1].Document.Name)
	api.AssertExpectations(t)
}

func TestCallback_PDFFailure(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")

	api.On("DownloadPDF", mock.Anything, giftcert.Ref{ID: 17}).
		Return(nil, &giftcert.BackendError{Op: "pdf", Message: "render failed"}).Once()

	replies := eng.Handle(context.Background(), callbackEvent(adminID, "pdf:17"))

	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "Ошибка PDF: render failed")
}

func TestCallback_Email(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")

	api.On("ResendEmail", mock.Anything, int64(17)).Return(nil).Once()

	replies := eng.Handle(context.Background(), callbackEvent(adminID, "email:17"))

	require.Len(t, replies, 2)
	assert.Equal(t, render.ToastSendingEmail, replies[0].Text)
	assert.Contains(t, replies[1].Text, "Email отправлен ✅ (сертификат #17)")
	api.AssertExpectations(t)
}

func TestCallback_EmailFailureIsTruncated(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")

	long := make([]byte, 0, 400)
	for i := 0; i < 400; i++ {
		long = append(long, 'x')
	}
	api.On("ResendEmail", mock.Anything, int64(17)).
		Return(&giftcert.BackendError{Op: "email", Message: string(long)}).Once()

	replies := eng.Handle(context.Background(), callbackEvent(adminID, "email:17"))

	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "❌ Ошибка отправки: ")
	assert.LessOrEqual(t, len([]rune(replies[1].Text)), 300+len([]rune("❌ Ошибка отправки: ")))
}

func TestCallback_UseRefetchesAndRedisplays(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")

	used := sentCert()
	used.Status = giftcert.StatusUsed

	api.On("Use", mock.Anything, giftcert.Ref{ID: 17}, render.NoteUsedViaTelegram).Return(nil).Once()
	api.On("Get", mock.Anything, giftcert.Ref{ID: 17}).Return(used, nil).Once()

	replies := eng.Handle(context.Background(), callbackEvent(adminID, "use:17"))

	require.Len(t, replies, 2)
	assert.Equal(t, render.ToastMarkingUsed, replies[0].Text)
	assert.True(t, replies[1].HTML)
	assert.Contains(t, replies[1].Text, "Использован")
	// refreshed card no longer offers use/annul
	require.Len(t, replies[1].Menu, 2)
	api.AssertExpectations(t)
}

func TestCallback_UseFailure(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")

	api.On("Use", mock.Anything, giftcert.Ref{ID: 17}, render.NoteUsedViaTelegram).
		Return(&giftcert.BackendError{Op: "use", Message: "already used"}).Once()

	replies := eng.Handle(context.Background(), callbackEvent(adminID, "use:17"))

	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "❌ Не получилось: already used")
	api.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCallback_UseRefetchFailureFallsBack(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")

	api.On("Use", mock.Anything, giftcert.Ref{ID: 17}, render.NoteUsedViaTelegram).Return(nil).Once()
	api.On("Get", mock.Anything, giftcert.Ref{ID: 17}).
		Return(nil, &giftcert.BackendError{Op: "get", Message: "gone"}).Once()

	replies := eng.Handle(context.Background(), callbackEvent(adminID, "use:17"))

	require.Len(t, replies, 2)
	assert.Equal(t, "Готово ✅", replies[1].Text)
}

func TestCallback_Annul(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")

	annulled := sentCert()
	annulled.Status = giftcert.StatusAnnulled

	api.On("Annul", mock.Anything, int64(17), render.ReasonAnnulledViaTelegr).Return(nil).Once()
	api.On("Get", mock.Anything, giftcert.Ref{ID: 17}).Return(annulled, nil).Once()

	replies := eng.Handle(context.Background(), callbackEvent(adminID, "annul:17"))

	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "Аннулирован")
	require.Len(t, replies[1].Menu, 2)
	api.AssertExpectations(t)
}

func TestCallback_DeleteIsTwoPhase(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")
	ctx := context.Background()

	// phase one: del only asks, no backend call
	replies := eng.Handle(ctx, callbackEvent(adminID, "del:17"))
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "Удалить сертификат #17?")
	require.Len(t, replies[1].Menu, 1)
	assert.Equal(t, "del_yes:17", replies[1].Menu[0][0].Token)
	assert.Equal(t, "del_no:17", replies[1].Menu[0][1].Token)
	api.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	// declining makes no call either
	replies = eng.Handle(ctx, callbackEvent(adminID, "del_no:17"))
	require.Len(t, replies, 1)
	assert.Equal(t, render.TextDeleteCancelled, replies[0].Text)
	api.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	// confirming performs exactly one delete
	api.On("Delete", mock.Anything, int64(17)).Return(nil).Once()
	replies = eng.Handle(ctx, callbackEvent(adminID, "del_yes:17"))
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "Удалён ✅ (сертификат #17)")
	assert.Contains(t, replies[1].Text, "Код стал доступен снова")
	api.AssertExpectations(t)
}

func TestCallback_DeleteFailure(t *testing.T) {
	api := new(mockAPI)
	eng, _ := newTestEngine(api, "")

	api.On("Delete", mock.Anything, int64(17)).
		Return(&giftcert.BackendError{Op: "delete", Message: "certificate is linked to an order"}).Once()

	replies := eng.Handle(context.Background(), callbackEvent(adminID, "del_yes:17"))

	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "❌ Ошибка удаления: certificate is linked to an order")
}
