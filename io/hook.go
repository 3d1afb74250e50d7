package io

type HookEvent int

const (
	HookEventInsert HookEvent = iota
	HookEventDelete
)

// HookCallbackFn runs inside the mutating transaction. before is nil when the
// object is new, after is nil on delete.
type HookCallbackFn func(txn *MemoryStoreTxn, event HookEvent, before, after interface{}) error

type ObjectHook struct {
	Events     []HookEvent // insert || delete
	ObjType    string      // model.Type
	CallbackFn HookCallbackFn
}

func (ms *MemoryStore) RegisterHook(hookConfig ObjectHook) {
	if len(hookConfig.Events) == 0 {
		return
	}

	ms.hookMutex.Lock()
	defer ms.hookMutex.Unlock()

	ms.hooks[hookConfig.ObjType] = append(ms.hooks[hookConfig.ObjType], hookConfig)
}

func (ms *MemoryStore) runHooks(txn *MemoryStoreTxn, event HookEvent, table string, before, after interface{}) error {
	ms.hookMutex.RLock()
	defer ms.hookMutex.RUnlock()

	for _, hook := range ms.hooks[table] {
		for _, e := range hook.Events {
			if e != event {
				continue
			}
			if err := hook.CallbackFn(txn, event, before, after); err != nil {
				return err
			}
		}
	}
	return nil
}
