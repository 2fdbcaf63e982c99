package sqlinline

const QSelectAvailableCellsForUpdate = `--sql 3b031efb-3fb4-4806-aa10-9a3b46f6f67a
select cell_id, rectangle_id, position, cell_type, area_size, status,
       pledge_id, payment_id, donor_name, amount_pence, batch_id, assigned_at
from grid_cells
where cell_type = $1::text and status = 'available'
order by rectangle_id asc, position asc
limit $2::int
for update;
`

const QGetCellsForUpdate = `--sql 48d0f598-22f3-4f74-878c-9dd9ec635393
select cell_id, rectangle_id, position, cell_type, area_size, status,
       pledge_id, payment_id, donor_name, amount_pence, batch_id, assigned_at
from grid_cells
where cell_id = any($1::text[])
order by cell_id asc
for update;
`

const QClaimCell = `--sql 27c0230c-a21a-491d-83b5-9d8227c4fe72
update grid_cells
set status = $2::text,
    pledge_id = $3::text,
    payment_id = $4::text,
    donor_name = $5::text,
    amount_pence = $6::bigint,
    batch_id = $7::uuid,
    assigned_at = now()
where cell_id = $1::text and status = 'available';
`

const QBlockCells = `--sql 0b9747ea-e7eb-4319-970f-5c9c1791d242
update grid_cells
set status = 'blocked'
where cell_id = any($1::text[]) and status = 'available';
`

const QReleaseCells = `--sql b720445e-7e50-4fbd-be85-f628420988c9
update grid_cells
set status = 'available',
    pledge_id = null,
    payment_id = null,
    donor_name = null,
    amount_pence = null,
    batch_id = null,
    assigned_at = null
where cell_id = any($1::text[]) and status in ('pledged', 'paid');
`

const QUnblockCellIfUnconflicted = `--sql 56334f1b-0c53-4ce6-98ba-db1a4f4e084b
update grid_cells
set status = 'available'
where cell_id = $1::text
  and status = 'blocked'
  and not exists (
    select 1 from grid_cells
    where cell_id = any($2::text[]) and status in ('pledged', 'paid')
  );
`

const QFindCellsByDonorRefForUpdate = `--sql df7e3e01-067d-4a9c-b2e0-fd9cfa4459e0
select cell_id, rectangle_id, position, cell_type, area_size, status,
       pledge_id, payment_id, donor_name, amount_pence, batch_id, assigned_at
from grid_cells
where status in ('pledged', 'paid')
  and (($1::text is not null and pledge_id = $1::text)
    or ($2::text is not null and payment_id = $2::text))
order by cell_id asc
for update;
`

const QListCells = `--sql c914abf7-0f75-4801-b531-d620b80e5f99
select cell_id, rectangle_id, position, cell_type, area_size, status,
       pledge_id, payment_id, donor_name, amount_pence, batch_id, assigned_at
from grid_cells
where $1::text = '' or rectangle_id = $1::text
order by rectangle_id asc, cell_type asc, position asc;
`

const QGridStats = `--sql e4b033df-dac0-49cd-af0d-af4d95492a36
select
  count(*)::int,
  (count(*) filter (where status = 'pledged'))::int,
  (count(*) filter (where status = 'paid'))::int,
  (count(*) filter (where status = 'available'))::int,
  (count(*) filter (where status = 'blocked'))::int,
  coalesce(sum(area_size) filter (where status in ('pledged', 'paid')), 0)::float8,
  coalesce(sum(amount_pence) filter (where status in ('pledged', 'paid')), 0)::bigint,
  coalesce(sum(area_size) filter (where cell_type = '1x1'), 0)::float8
from grid_cells;
`

const QInsertCell = `--sql d9629031-99b7-4b98-a23b-81fbe1480da6
insert into grid_cells (cell_id, rectangle_id, position, cell_type, area_size, status)
values ($1::text, $2::text, $3::int, $4::text, $5::float8, 'available')
on conflict (cell_id) do nothing;
`
