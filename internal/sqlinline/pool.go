package sqlinline

const QGetPoolForUpdate = `--sql df52f3ad-67a0-4be7-a0f3-7d75615831fb
select total_pence, allocated_pence, remaining_pence, last_updated
from custom_amount_pool
where id = 1
for update;
`

const QAddToPool = `--sql 9953acb8-a28a-4738-a9c5-4c7bfad0b9ed
update custom_amount_pool
set total_pence = total_pence + $1::bigint,
    remaining_pence = remaining_pence + $1::bigint,
    last_updated = now()
where id = 1
returning total_pence, allocated_pence, remaining_pence, last_updated;
`

const QPoolRecordAllocation = `--sql 8ce1c025-070e-4694-ae4a-46c64579fc39
update custom_amount_pool
set remaining_pence = remaining_pence - $1::bigint,
    allocated_pence = allocated_pence + $1::bigint,
    last_updated = now()
where id = 1 and remaining_pence >= $1::bigint;
`

const QInsertPoolRow = `--sql 48145430-6ce3-4f99-a75d-1c129ffe452c
insert into custom_amount_pool (id, total_pence, allocated_pence, remaining_pence, last_updated)
values (1, 0, 0, 0, now())
on conflict (id) do nothing;
`
