package notify

import (
    "testing"
    "time"
)

func TestShowAndCurrent(t *testing.T) {
    c := NewCenter(time.Minute)
    defer c.Close()

    c.Show(1, KindSuccess, "booking approved")
    n, ok := c.Current(1)
    if !ok || n.Kind != KindSuccess || n.Text != "booking approved" {
        t.Fatalf("got %+v, ok=%v", n, ok)
    }
    if _, ok := c.Current(2); ok {
        t.Fatal("notice leaked to another user")
    }
}

func TestSecondShowReplacesFirst(t *testing.T) {
    c := NewCenter(time.Minute)
    defer c.Close()

    c.Show(1, KindInfo, "first")
    c.Show(1, KindError, "second")
    n, ok := c.Current(1)
    if !ok || n.Text != "second" || n.Kind != KindError {
        t.Fatalf("replacement failed: %+v", n)
    }
}

func TestAutoDismiss(t *testing.T) {
    c := NewCenter(20 * time.Millisecond)
    defer c.Close()

    c.Show(1, KindInfo, "ephemeral")
    time.Sleep(60 * time.Millisecond)
    if _, ok := c.Current(1); ok {
        t.Fatal("notice survived its TTL")
    }
}

func TestReplacementOutlivesOldTimer(t *testing.T) {
    c := NewCenter(30 * time.Millisecond)
    defer c.Close()

    c.Show(1, KindInfo, "old")
    time.Sleep(20 * time.Millisecond)
    c.Show(1, KindInfo, "new")
    // The first notice's deadline passes now; the replacement must stay.
    time.Sleep(15 * time.Millisecond)
    if n, ok := c.Current(1); !ok || n.Text != "new" {
        t.Fatalf("stale timer cleared the replacement: %+v ok=%v", n, ok)
    }
}

func TestDismiss(t *testing.T) {
    c := NewCenter(time.Minute)
    defer c.Close()

    c.Show(1, KindWarning, "low balance")
    c.Dismiss(1)
    if _, ok := c.Current(1); ok {
        t.Fatal("notice visible after dismiss")
    }
}

func TestCloseStopsEverything(t *testing.T) {
    c := NewCenter(time.Minute)
    c.Show(1, KindInfo, "pending")
    c.Close()
    if _, ok := c.Current(1); ok {
        t.Fatal("notice visible after close")
    }
    c.Show(1, KindInfo, "after close")
    if _, ok := c.Current(1); ok {
        t.Fatal("show succeeded after close")
    }
}
