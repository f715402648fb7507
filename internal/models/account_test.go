package models

import (
	"testing"
)

func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		wantErr bool
	}{
		{
			name: "Valid account",
			account: Account{
				Email:       "test@example.com",
				DisplayName: "Test User",
				Role:        RoleUser,
			},
			wantErr: false,
		},
		{
			name: "Empty email",
			account: Account{
				Email:       "",
				DisplayName: "Test User",
				Role:        RoleUser,
			},
			wantErr: true,
		},
		{
			name: "Invalid email",
			account: Account{
				Email:       "invalid-email",
				DisplayName: "Test User",
				Role:        RoleUser,
			},
			wantErr: true,
		},
		{
			name: "Empty display name",
			account: Account{
				Email:       "test@example.com",
				DisplayName: "",
				Role:        RoleUser,
			},
			wantErr: true,
		},
		{
			name: "Display name too short",
			account: Account{
				Email:       "test@example.com",
				DisplayName: "A",
				Role:        RoleUser,
			},
			wantErr: true,
		},
		{
			name: "Unknown role",
			account: Account{
				Email:       "test@example.com",
				DisplayName: "Test User",
				Role:        "superuser",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Account.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessage_Validate(t *testing.T) {
	url := "https://cdn.example.com/chat/abc.jpg"
	empty := ""

	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"Valid text", Message{Type: MessageTypeText, Text: "hello"}, false},
		{"Text without body", Message{Type: MessageTypeText}, true},
		{"Valid image", Message{Type: MessageTypeImage, ImageURL: &url}, false},
		{"Image without url", Message{Type: MessageTypeImage}, true},
		{"Image with empty url", Message{Type: MessageTypeImage, ImageURL: &empty}, true},
		{"Valid document", Message{Type: MessageTypeDocument, DocumentURL: &url}, false},
		{"Unknown type", Message{Type: MessageType("video"), Text: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Message.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReportEnums(t *testing.T) {
	for _, r := range []ReportReason{
		ReportReasonInappropriate, ReportReasonHarassment, ReportReasonSpam,
		ReportReasonFakeProfile, ReportReasonOther,
	} {
		if !r.IsValid() {
			t.Errorf("expected reason %q to be valid", r)
		}
	}
	if ReportReason("abuse").IsValid() {
		t.Error("expected unknown reason to be invalid")
	}

	for _, s := range []ReportStatus{
		ReportStatusPending, ReportStatusReviewed, ReportStatusActionTaken,
		ReportStatusDismissed,
	} {
		if !s.IsValid() {
			t.Errorf("expected status %q to be valid", s)
		}
	}
	if ReportStatus("open").IsValid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestPairConversationID(t *testing.T) {
	if got, want := PairConversationID("VM0002", "VM0001"), "VM0001_VM0002"; got != want {
		t.Errorf("PairConversationID = %q, want %q", got, want)
	}
	if PairConversationID("VM0001", "VM0002") != PairConversationID("VM0002", "VM0001") {
		t.Error("both members must derive the same conversation id")
	}
}
