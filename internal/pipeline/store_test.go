package pipeline

import "testing"

func TestStoreSetGet(t *testing.T) {
	st := NewStore()
	st.Set("a", "1")
	st.Set("b", "2")

	if got := st.Get("a"); got != "1" {
		t.Errorf("Get(a) = %q", got)
	}
	if got := st.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q", got)
	}
	if _, ok := st.Lookup("missing"); ok {
		t.Error("Lookup(missing) reported present")
	}
	if st.Len() != 2 {
		t.Errorf("Len = %d", st.Len())
	}
}

func TestStoreLastWrite(t *testing.T) {
	st := NewStore()
	if _, _, ok := st.LastWrite(); ok {
		t.Error("LastWrite on empty store reported ok")
	}

	st.Set("a", "1")
	st.Set("b", "2")
	key, val, ok := st.LastWrite()
	if !ok || key != "b" || val != "2" {
		t.Errorf("LastWrite = (%q, %q, %v)", key, val, ok)
	}

	// rewriting an old key makes it the most recent
	st.Set("a", "3")
	key, val, _ = st.LastWrite()
	if key != "a" || val != "3" {
		t.Errorf("after rewrite LastWrite = (%q, %q)", key, val)
	}
	if st.Len() != 2 {
		t.Errorf("rewrite changed Len to %d", st.Len())
	}
}
