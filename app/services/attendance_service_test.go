package services

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/PrimChim/Attendance-zkteco/app/device"
	"github.com/PrimChim/Attendance-zkteco/app/device/devicetest"
	"github.com/PrimChim/Attendance-zkteco/app/models"
)

var testAddr = device.Address{Host: "192.168.1.201", Port: 4370, Timeout: 5 * time.Second}

func TestFetchSnapshotSingleBracket(t *testing.T) {
	term := devicetest.New()
	ts := time.Date(2024, time.March, 5, 8, 1, 0, 0, time.Local)
	term.Seed(
		[]device.RawUser{{UID: 1, ExternalID: "1", Name: "Alice", Privilege: device.PrivilegeCodeAdmin}},
		[]device.RawPunch{{ExternalID: "1", Timestamp: ts, Punch: 0, Status: 1}},
	)
	m := device.NewManager(term)

	snap, err := FetchSnapshot(context.Background(), m, testAddr)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(snap.Users) != 1 || snap.Users[0].Privilege != models.PrivilegeAdmin {
		t.Errorf("users: %+v", snap.Users)
	}
	if len(snap.Punches) != 1 || !snap.Punches[0].Timestamp.Equal(ts) {
		t.Errorf("punches: %+v", snap.Punches)
	}

	// Users and punches come from one session, not two.
	want := []string{"connect", "disable", "users", "attendance", "enable", "disconnect"}
	if got := term.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("device calls: got %v, want %v", got, want)
	}
}

func TestVoiceTestSweep(t *testing.T) {
	term := devicetest.New()
	m := device.NewManager(term)

	played, err := VoiceTest(context.Background(), m, testAddr, 0, 3)
	if err != nil {
		t.Fatalf("voice test: %v", err)
	}
	if played != 4 {
		t.Errorf("played %d prompts, want 4", played)
	}
}

func TestVoiceTestStopsOnFirstFailure(t *testing.T) {
	term := devicetest.New()
	term.PromptFailIndex = 2
	m := device.NewManager(term)

	played, err := VoiceTest(context.Background(), m, testAddr, 0, 10)
	if err == nil {
		t.Fatal("expected a prompt failure")
	}
	if played != 2 {
		t.Errorf("played %d prompts before failing, want 2", played)
	}
	if term.Disabled() {
		t.Error("terminal left disabled after failed sweep")
	}
}
