package models

// GlobalDomainEntry is one row of the static global domain-equivalence
// table shipped with the server.
type GlobalDomainEntry struct {
	Type    int
	Domains []string
}

// GlobalEquivalentDomains is the server-fixed equivalence table. The group
// type ids are part of the client protocol and must stay stable; the list
// is a trimmed-down copy of the one upstream clients ship with.
var GlobalEquivalentDomains = []GlobalDomainEntry{
	{Type: 0, Domains: []string{"ameritrade.com", "tdameritrade.com"}},
	{Type: 2, Domains: []string{"amazon.com", "amazon.co.uk", "amazon.de", "amazon.fr", "amazon.es", "amazon.it", "amazon.ca", "amazon.co.jp"}},
	{Type: 3, Domains: []string{"apple.com", "icloud.com"}},
	{Type: 12, Domains: []string{"google.com", "youtube.com", "gmail.com"}},
	{Type: 13, Domains: []string{"apartments.com", "apartmenthomeliving.com"}},
	{Type: 20, Domains: []string{"bananarepublic.com", "gap.com", "oldnavy.com", "piperlime.com"}},
	{Type: 29, Domains: []string{"microsoft.com", "msn.com", "live.com", "windowsazure.com", "office.com", "azure.com", "microsoftonline.com", "outlook.com", "skype.com", "onedrive.com", "xbox.com"}},
	{Type: 32, Domains: []string{"ebay.com", "ebay.de", "ebay.ca", "ebay.co.uk", "ebay.fr", "ebay.it", "ebay.com.au", "ebay.es"}},
	{Type: 41, Domains: []string{"wellsfargo.com", "wf.com"}},
	{Type: 43, Domains: []string{"zonealarm.com", "zonelabs.com"}},
	{Type: 48, Domains: []string{"yandex.com", "ya.ru", "yandex.ru"}},
	{Type: 62, Domains: []string{"netflix.com", "netflix.net"}},
	{Type: 81, Domains: []string{"steampowered.com", "steamcommunity.com", "steamgames.com"}},
	{Type: 84, Domains: []string{"proton.me", "protonmail.com", "protonvpn.com"}},
}
