// Package session stores live game sessions and persists them.
//
// Manager keeps sessions in memory under case-insensitive 4-character ids
// and, when given a SessionPersistence, writes them through on create and
// after each action. Sessions missing from memory are loaded lazily on Get.
//
// Two persistence layers are provided. FilePersistence writes <dir>/<id>.sav
// in the savefile format. RedisPersistence stores the same text under
// <prefix><id> keys with an optional TTL.
//
// Usage:
//
//	store, err := session.NewFilePersistence("sessions", rulesMgr)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", "classic", game)
package session
