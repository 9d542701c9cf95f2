//nolint:testpackage // Tests require internal access for thorough testing
package registry

import (
	"errors"
	"slices"
	"testing"

	taskerrors "github.com/abatilo/taskgate/internal/errors"
	"github.com/abatilo/taskgate/internal/event"
	"github.com/abatilo/taskgate/internal/task"
)

func makeTask(id string, complete bool) task.Task {
	return task.Task{ID: id, Name: "Task " + id, Complete: complete}
}

func newRegistry(t *testing.T, tasks ...task.Task) *Registry {
	t.Helper()
	r := New()
	for _, tk := range tasks {
		r.RegisterTask(tk)
	}
	return r
}

func ids(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, tk := range tasks {
		out[i] = tk.ID
	}
	return out
}

func mustCanComplete(t *testing.T, r *Registry, id string) bool {
	t.Helper()
	ok, err := r.CanCompleteTask(id)
	if err != nil {
		t.Fatalf("CanCompleteTask(%q) error = %v", id, err)
	}
	return ok
}

func isNotFound(err error, id string) bool {
	var notFound taskerrors.TaskNotFoundError
	return errors.As(err, &notFound) && notFound.ID == id
}

func TestCanCompleteWithoutBlockers(t *testing.T) {
	r := newRegistry(t, makeTask("a", false), makeTask("b", true))

	for _, id := range []string{"a", "b"} {
		if !mustCanComplete(t, r, id) {
			t.Errorf("CanCompleteTask(%q) = false, want true", id)
		}
	}

	// Unregistered ids with no edges have no blockers either.
	if !mustCanComplete(t, r, "nobody") {
		t.Error("CanCompleteTask on an id with no edges should be true")
	}
}

func TestGatingScenario(t *testing.T) {
	r := newRegistry(t, makeTask("A", false), makeTask("B", false), makeTask("C", false))

	r.AddBlockingTask("C", "A")
	r.AddBlockingTask("C", "B")
	if mustCanComplete(t, r, "C") {
		t.Fatal("C should be blocked by A and B")
	}

	if err := r.SetTaskCompletion("A", true); err != nil {
		t.Fatal(err)
	}
	if mustCanComplete(t, r, "C") {
		t.Fatal("C should still be blocked by B")
	}

	if err := r.SetTaskCompletion("B", true); err != nil {
		t.Fatal(err)
	}
	if !mustCanComplete(t, r, "C") {
		t.Fatal("C should be eligible once A and B are complete")
	}

	r.RemoveBlockingTask("C", "A")
	if err := r.SetTaskCompletion("A", false); err != nil {
		t.Fatal(err)
	}
	if !mustCanComplete(t, r, "C") {
		t.Fatal("A no longer blocks C")
	}
}

func TestMissingReference(t *testing.T) {
	r := newRegistry(t, makeTask("A", false))
	r.AddBlockingTask("A", "ghost")

	_, err := r.CanCompleteTask("A")
	if !isNotFound(err, "ghost") {
		t.Fatalf("CanCompleteTask error = %v, want TaskNotFoundError{ghost}", err)
	}

	if _, err = r.BlockingTasks("A"); !isNotFound(err, "ghost") {
		t.Errorf("BlockingTasks error = %v, want TaskNotFoundError{ghost}", err)
	}

	// The raw id list never resolves anything.
	if got := r.BlockingTaskIDs("A"); !slices.Equal(got, []string{"ghost"}) {
		t.Errorf("BlockingTaskIDs = %v, want [ghost]", got)
	}
}

func TestMissingReferenceFailsEvenWhenAnotherBlockerIsIncomplete(t *testing.T) {
	r := newRegistry(t, makeTask("A", false), makeTask("B", false))
	r.AddBlockingTask("A", "B", "ghost")

	if _, err := r.CanCompleteTask("A"); !isNotFound(err, "ghost") {
		t.Errorf("CanCompleteTask error = %v, want TaskNotFoundError{ghost}", err)
	}
}

func TestSelfCycle(t *testing.T) {
	r := newRegistry(t, makeTask("A", false))
	r.AddBlockingTask("A", "A")

	if mustCanComplete(t, r, "A") {
		t.Fatal("a self-blocked incomplete task should not be eligible")
	}

	// Completion is not gated by the registry; marking it directly unblocks it.
	if err := r.SetTaskCompletion("A", true); err != nil {
		t.Fatal(err)
	}
	if !mustCanComplete(t, r, "A") {
		t.Error("self-blocked task marked complete should report eligible")
	}
}

func TestAddIsAppendOnlyAndRemoveIsIdempotent(t *testing.T) {
	r := newRegistry(t, makeTask("A", false), makeTask("B", false), makeTask("C", false))

	r.AddBlockingTask("A", "B")
	r.AddBlockingTask("A", "C", "B")
	if got, want := r.BlockingTaskIDs("A"), []string{"B", "C", "B"}; !slices.Equal(got, want) {
		t.Fatalf("BlockingTaskIDs = %v, want %v", got, want)
	}

	r.RemoveBlockingTask("A", "B")
	if got, want := r.BlockingTaskIDs("A"), []string{"C"}; !slices.Equal(got, want) {
		t.Fatalf("after remove BlockingTaskIDs = %v, want %v", got, want)
	}

	r.RemoveBlockingTask("A", "B")
	if got, want := r.BlockingTaskIDs("A"), []string{"C"}; !slices.Equal(got, want) {
		t.Errorf("second remove BlockingTaskIDs = %v, want %v", got, want)
	}
}

func TestRemoveEstablishesEmptySequence(t *testing.T) {
	r := newRegistry(t, makeTask("A", false))

	r.RemoveBlockingTask("A", "nothing")

	got := r.BlockingTaskIDs("A")
	if got == nil || len(got) != 0 {
		t.Errorf("BlockingTaskIDs = %#v, want empty non-nil slice", got)
	}
	if _, recorded := r.Snapshot().Blocking["A"]; !recorded {
		t.Error("RemoveBlockingTask should record an empty sequence")
	}
	if !mustCanComplete(t, r, "A") {
		t.Error("an empty sequence has no blockers")
	}
}

func TestBlockingTaskIDsReturnsCopy(t *testing.T) {
	r := newRegistry(t, makeTask("A", false), makeTask("B", false))
	r.AddBlockingTask("A", "B")

	got := r.BlockingTaskIDs("A")
	got[0] = "mutated"

	if again := r.BlockingTaskIDs("A"); again[0] != "B" {
		t.Errorf("registry state changed through returned slice: %v", again)
	}
	if empty := r.BlockingTaskIDs("unknown"); len(empty) != 0 {
		t.Errorf("BlockingTaskIDs(unknown) = %v, want empty", empty)
	}
}

func TestBlockingTasksResolvesInOrder(t *testing.T) {
	r := newRegistry(t, makeTask("A", false), makeTask("B", true), makeTask("C", false))
	r.AddBlockingTask("A", "C", "B")

	got, err := r.BlockingTasks("A")
	if err != nil {
		t.Fatalf("BlockingTasks error = %v", err)
	}
	if want := []string{"C", "B"}; !slices.Equal(ids(got), want) {
		t.Errorf("BlockingTasks = %v, want %v", ids(got), want)
	}
	if !got[1].Complete {
		t.Error("resolved blocker should carry its completion flag")
	}
}

func TestCompletionRoundTrip(t *testing.T) {
	r := newRegistry(t, makeTask("A", false))

	for _, want := range []bool{true, false, true} {
		if err := r.SetTaskCompletion("A", want); err != nil {
			t.Fatal(err)
		}
		got, err := r.Task("A")
		if err != nil {
			t.Fatal(err)
		}
		if got.Complete != want {
			t.Errorf("Complete = %v, want %v", got.Complete, want)
		}
	}
}

func TestCompletionDoesNotCascade(t *testing.T) {
	r := newRegistry(t, makeTask("A", true), makeTask("B", false))
	r.AddBlockingTask("B", "A")
	if err := r.SetTaskCompletion("B", true); err != nil {
		t.Fatal(err)
	}

	if err := r.SetTaskCompletion("A", false); err != nil {
		t.Fatal(err)
	}

	b, _ := r.Task("B")
	if !b.Complete {
		t.Error("B keeps its flag when its blocker is reopened")
	}
	if mustCanComplete(t, r, "B") {
		t.Error("B should now report ineligible")
	}
}

func TestSetTaskCompletionNotFound(t *testing.T) {
	r := New()
	if err := r.SetTaskCompletion("ghost", true); !isNotFound(err, "ghost") {
		t.Errorf("SetTaskCompletion error = %v, want TaskNotFoundError{ghost}", err)
	}
	if _, err := r.Task("ghost"); !isNotFound(err, "ghost") {
		t.Errorf("Task error = %v, want TaskNotFoundError{ghost}", err)
	}
}

func TestRegisterTaskOverwriteKeepsPosition(t *testing.T) {
	r := newRegistry(t, makeTask("A", false), makeTask("B", false), makeTask("C", false))

	r.RegisterTask(task.Task{ID: "A", Name: "renamed"})

	if got, want := ids(r.Tasks(FilterAll)), []string{"A", "B", "C"}; !slices.Equal(got, want) {
		t.Errorf("Tasks order = %v, want %v", got, want)
	}
	a, _ := r.Task("A")
	if a.Name != "renamed" {
		t.Errorf("Name = %q, want %q", a.Name, "renamed")
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}

func TestRegisterTaskAcceptsEmptyID(t *testing.T) {
	r := New()
	r.RegisterTask(task.Task{ID: "", Name: "anonymous"})

	got, err := r.Task("")
	if err != nil {
		t.Fatalf("Task(\"\") error = %v", err)
	}
	if got.Name != "anonymous" {
		t.Errorf("Name = %q, want %q", got.Name, "anonymous")
	}
}

func TestTasksPartition(t *testing.T) {
	r := newRegistry(t,
		makeTask("a", false), makeTask("b", true), makeTask("c", false), makeTask("d", true))
	_ = r.SetTaskCompletion("a", true)
	_ = r.SetTaskCompletion("d", false)

	all := ids(r.Tasks(FilterAll))
	complete := ids(r.Tasks(FilterComplete))
	incomplete := ids(r.Tasks(FilterIncomplete))

	if len(complete)+len(incomplete) != len(all) {
		t.Fatalf("complete %v + incomplete %v does not cover all %v", complete, incomplete, all)
	}
	for _, id := range all {
		if slices.Contains(complete, id) == slices.Contains(incomplete, id) {
			t.Errorf("task %q must be in exactly one partition", id)
		}
	}
	if want := []string{"a", "b"}; !slices.Equal(complete, want) {
		t.Errorf("complete = %v, want %v", complete, want)
	}
}

func TestEligibleDependentTasks(t *testing.T) {
	r := newRegistry(t,
		makeTask("A", false), makeTask("B", false), makeTask("C", false), makeTask("D", false))
	r.AddBlockingTask("A", "C")

	got := ids(r.EligibleDependentTasks("A"))
	if want := []string{"B", "D"}; !slices.Equal(got, want) {
		t.Errorf("EligibleDependentTasks(A) = %v, want %v", got, want)
	}

	// No cycle analysis: C may be offered A even though A waits on C.
	if got = ids(r.EligibleDependentTasks("C")); !slices.Contains(got, "A") {
		t.Errorf("EligibleDependentTasks(C) = %v, want it to include A", got)
	}
}

func TestReturnedTasksAreCopies(t *testing.T) {
	desc := "original"
	r := newRegistry(t, task.Task{ID: "A", Name: "A", Description: &desc})

	got, _ := r.Task("A")
	*got.Description = "changed"
	got.Name = "changed"

	again, _ := r.Task("A")
	if again.Name != "A" || again.DescriptionText() != "original" {
		t.Errorf("registry state changed through a returned task: %+v", again)
	}

	desc = "caller edit"
	if again, _ = r.Task("A"); again.DescriptionText() != "original" {
		t.Error("registry must not alias the caller's description")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	r := newRegistry(t, makeTask("A", false), makeTask("B", false))
	r.AddBlockingTask("A", "B")

	snap := r.Snapshot()
	snap.Blocking["A"][0] = "mutated"
	snap.Tasks[0].Complete = true

	if got := r.BlockingTaskIDs("A"); got[0] != "B" {
		t.Errorf("blocking changed through snapshot: %v", got)
	}
	if a, _ := r.Task("A"); a.Complete {
		t.Error("task changed through snapshot")
	}
}

type recorder struct {
	r      *Registry
	events []event.Event
	seen   []bool // CanCompleteTask("C") as observed by the handler
}

func (rec *recorder) Publish(e event.Event) {
	rec.events = append(rec.events, e)
	ok, _ := rec.r.CanCompleteTask("C")
	rec.seen = append(rec.seen, ok)
}

func TestMutationsPublishAfterStateChange(t *testing.T) {
	rec := &recorder{}
	r := New(WithPublisher(rec))
	rec.r = r

	r.RegisterTask(makeTask("A", false))
	r.RegisterTask(makeTask("C", false))
	r.AddBlockingTask("C", "A")
	_ = r.SetTaskCompletion("A", true)
	r.RemoveBlockingTask("C", "A")
	r.RegisterTask(makeTask("A", true))

	wantTypes := []string{
		event.TypeTaskRegistered,
		event.TypeTaskRegistered,
		event.TypeBlockingAdded,
		event.TypeCompletionChanged,
		event.TypeBlockingRemoved,
		event.TypeTaskRegistered,
	}
	if len(rec.events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(rec.events), len(wantTypes))
	}
	for i, e := range rec.events {
		if e.EventType() != wantTypes[i] {
			t.Errorf("event %d type = %q, want %q", i, e.EventType(), wantTypes[i])
		}
	}

	// The handler sees state after each mutation: blocked once the edge is
	// added, eligible after A completes.
	if want := []bool{true, true, false, true, true, true}; !slices.Equal(rec.seen, want) {
		t.Errorf("observed eligibility = %v, want %v", rec.seen, want)
	}

	if reg, ok := rec.events[5].(event.TaskRegisteredEvent); !ok || !reg.Replaced {
		t.Errorf("last event = %#v, want a replacing TaskRegisteredEvent", rec.events[5])
	}
	if rm, ok := rec.events[4].(event.BlockingRemovedEvent); !ok || rm.Removed != 1 {
		t.Errorf("remove event = %#v, want Removed = 1", rec.events[4])
	}
}

func TestFailedMutationDoesNotPublish(t *testing.T) {
	bus := event.NewBus(nil)
	count := 0
	bus.SubscribeAll(func(event.Event) { count++ })

	r := New(WithPublisher(bus))
	_ = r.SetTaskCompletion("ghost", true)

	if count != 0 {
		t.Errorf("published %d events for a failed mutation, want 0", count)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		input   string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"complete", FilterComplete, false},
		{"incomplete", FilterIncomplete, false},
		{"done", FilterAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFilter(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFilter(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFilter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if !Filter("bogus").Matches(makeTask("x", true)) {
		t.Error("unknown filters should match every task")
	}
}
