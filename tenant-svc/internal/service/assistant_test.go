package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAssistant struct {
	mock.Mock
}

func (m *mockAssistant) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestAssistantSuggestDescription(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*mockAssistant)
		want      string
	}{
		{
			name: "generated text",
			setupMock: func(m *mockAssistant) {
				m.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
					return strings.Contains(p, "Hummus")
				})).Return("  Creamy chickpeas topped with spiced lamb. ", nil).Once()
			},
			want: "Creamy chickpeas topped with spiced lamb.",
		},
		{
			name: "client error",
			setupMock: func(m *mockAssistant) {
				m.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()
			},
			want: FallbackDescription,
		},
		{
			name: "empty answer",
			setupMock: func(m *mockAssistant) {
				m.On("Complete", mock.Anything, mock.Anything).Return("   ", nil).Once()
			},
			want: FallbackDescription,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			client := new(mockAssistant)
			testCase.setupMock(client)

			svc := NewAssistantService(client)
			assert.Equal(t, testCase.want, svc.SuggestDescription(context.Background(), "Hummus"))
			client.AssertExpectations(t)
		})
	}
}

func TestAssistantWithoutClient(t *testing.T) {
	svc := NewAssistantService(nil)
	assert.Equal(t, FallbackDescription, svc.SuggestDescription(context.Background(), "Hummus"))
	assert.Equal(t, FallbackAnswer, svc.Ask(context.Background(), "What sells best?"))
}

func TestAssistantAskBlankQuestion(t *testing.T) {
	client := new(mockAssistant)
	svc := NewAssistantService(client)

	assert.Equal(t, FallbackAnswer, svc.Ask(context.Background(), "   "))
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}
