// Package driven holds the interfaces the core uses to reach Infoflex,
// Rule.io, the config file and the local push history.
//
// StoreOpener hands out one OrderStore per environment connection.
// PartyNormaliser fills derived customer fields. ConfigStore is the flat
// key/value view of the TOML file.
//
// SubscriberSink and SchedulerStore may be nil. Without a sink a push can
// only dry-run; without a history store runs are not recorded.
//
// Only the domain package may be imported from here.
package driven
