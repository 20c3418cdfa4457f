package log

import "testing"

func TestLayerString(t *testing.T) {
	tests := []struct {
		layer Layer
		want  string
	}{
		{LayerConnection, "CONNECTION"},
		{LayerRequest, "REQUEST"},
		{LayerFence, "FENCE"},
		{LayerDispatch, "DISPATCH"},
		{LayerTransport, "TRANSPORT"},
		{Layer(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.layer.String()
		if got != tt.want {
			t.Errorf("Layer(%d).String() = %q, want %q", tt.layer, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		cat  Category
		want string
	}{
		{CategoryState, "STATE"},
		{CategoryError, "ERROR"},
		{CategoryDelivery, "DELIVERY"},
		{CategoryInfo, "INFO"},
		{Category(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.cat.String()
		if got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.cat, got, tt.want)
		}
	}
}

func TestDeliveryTargetAndInfoCodeString(t *testing.T) {
	if got := DeliveryInProcess.String(); got != "IN_PROCESS" {
		t.Errorf("DeliveryInProcess.String() = %q", got)
	}
	if got := DeliveryPersistent.String(); got != "PERSISTENT" {
		t.Errorf("DeliveryPersistent.String() = %q", got)
	}
	if got := InfoDuplicateNameReplaced.String(); got != "DUPLICATE_NAME_REPLACED" {
		t.Errorf("InfoDuplicateNameReplaced.String() = %q", got)
	}
	if got := InfoCode(42).String(); got != "UNKNOWN" {
		t.Errorf("InfoCode(42).String() = %q", got)
	}
}
