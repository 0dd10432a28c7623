package chain

// ticketABI covers the read-only surface of the EventTicketNFT contract the service uses.
const ticketABI = `[
  {"type":"function","name":"getAllEvents","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"tuple[]","internalType":"struct EventTicketNFT.Event[]","components":[
     {"name":"id","type":"uint256"},
     {"name":"name","type":"string"},
     {"name":"description","type":"string"},
     {"name":"eventDate","type":"uint256"},
     {"name":"ticketPrice","type":"uint256"},
     {"name":"maxSupply","type":"uint256"},
     {"name":"soldTickets","type":"uint256"},
     {"name":"organizer","type":"address"},
     {"name":"isActive","type":"bool"},
     {"name":"imageCID","type":"string"}]}]},
  {"type":"function","name":"getTicket","stateMutability":"view",
   "inputs":[{"name":"ticketId","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple","internalType":"struct EventTicketNFT.Ticket","components":[
     {"name":"id","type":"uint256"},
     {"name":"eventId","type":"uint256"},
     {"name":"ticketNumber","type":"uint256"},
     {"name":"metadataURI","type":"string"}]}]},
  {"type":"function","name":"getMarketplaceListing","stateMutability":"view",
   "inputs":[{"name":"ticketId","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple","internalType":"struct EventTicketNFT.MarketplaceListing","components":[
     {"name":"ticketId","type":"uint256"},
     {"name":"seller","type":"address"},
     {"name":"price","type":"uint256"},
     {"name":"isActive","type":"bool"}]}]},
  {"type":"function","name":"getActiveListings","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"tokenOfOwnerByIndex","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"},{"name":"index","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"ownerOf","stateMutability":"view",
   "inputs":[{"name":"tokenId","type":"uint256"}],
   "outputs":[{"name":"","type":"address"}]}
]`
