package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopStoreHooks{}
	s.OnShapeAppended("1", "circle")
	s.OnChangesApplied("shapes", 3, time.Millisecond, nil)
	s.OnConnect("xy-edge__1-2", "1", "2", true)
	s.OnDataCommitted("shapes", "1", 1)

	e := NoopExportHooks{}
	e.OnExport(ctx, "json", 1024, time.Second, nil)

	d := NoopDraftHooks{}
	d.OnDraftSaved(ctx, "file", "scratch", nil)
	d.OnDraftLoaded(ctx, "redis", "scratch", false)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Export() should return NoopExportHooks by default")
	}
	if _, ok := Draft().(NoopDraftHooks); !ok {
		t.Error("Draft() should return NoopDraftHooks by default")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customExport := &testExportHooks{}
	SetExportHooks(customExport)
	if Export() != customExport {
		t.Error("SetExportHooks should set custom hooks")
	}

	customDraft := &testDraftHooks{}
	SetDraftHooks(customDraft)
	if Draft() != customDraft {
		t.Error("SetDraftHooks should set custom hooks")
	}

	Reset()
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testStoreHooks{}
	SetStoreHooks(custom)
	SetStoreHooks(nil)

	if Store() != custom {
		t.Error("SetStoreHooks(nil) should be ignored")
	}

	Reset()
}

type testStoreHooks struct{ NoopStoreHooks }
type testExportHooks struct{ NoopExportHooks }
type testDraftHooks struct{ NoopDraftHooks }
